package goconsolidate

import (
	"fmt"
	"strconv"
	"strings"
)

// FilenameTemplate is a filename pattern with exactly one decimal integer
// placeholder, compiled from a legacy printf-style specifier. Only decimal
// conversions with the flags '-', '+', '0' and space plus optional width and
// precision are supported; this is deliberately not a general printf
// emulator.
type FilenameTemplate struct {
	prefix    string
	suffix    string
	minus     bool
	plus      bool
	zero      bool
	space     bool
	width     int // -1 when unset
	precision int // -1 when unset
}

// TranslateTemplate compiles a printf-style filename specifier into an
// explicit template. The specifier must contain exactly one conversion;
// literal percent signs are written as "%%".
func TranslateTemplate(spec string) (*FilenameTemplate, error) {
	t := &FilenameTemplate{width: -1, precision: -1}
	var literal strings.Builder
	converted := false
	for i := 0; i < len(spec); i++ {
		if spec[i] != '%' {
			literal.WriteByte(spec[i])
			continue
		}
		if i+1 < len(spec) && spec[i+1] == '%' {
			literal.WriteByte('%')
			i++
			continue
		}
		if converted {
			return nil, fmt.Errorf("template %q contains more than one conversion", spec)
		}
		t.prefix = literal.String()
		literal.Reset()
		i++
		for ; i < len(spec); i++ {
			done := false
			switch spec[i] {
			case '-':
				t.minus = true
			case '+':
				t.plus = true
			case '0':
				t.zero = true
			case ' ':
				t.space = true
			default:
				done = true
			}
			if done {
				break
			}
		}
		start := i
		for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}
		if i > start {
			t.width, _ = strconv.Atoi(spec[start:i])
		}
		if i < len(spec) && spec[i] == '.' {
			i++
			start = i
			for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("template %q has a precision dot without digits", spec)
			}
			t.precision, _ = strconv.Atoi(spec[start:i])
		}
		if i >= len(spec) || spec[i] != 'd' {
			return nil, fmt.Errorf("template %q uses an unsupported conversion: only decimal integers are supported", spec)
		}
		converted = true
	}
	if !converted {
		return nil, fmt.Errorf("template %q contains no conversion", spec)
	}
	t.suffix = literal.String()
	return t, nil
}

// Placeholder renders the compiled template with an explicit brace
// placeholder in place of the legacy conversion specifier.
func (t *FilenameTemplate) Placeholder() string {
	var spec strings.Builder
	if t.minus {
		spec.WriteByte('-')
	}
	if t.plus {
		spec.WriteByte('+')
	}
	if t.space {
		spec.WriteByte(' ')
	}
	if t.zero {
		spec.WriteByte('0')
	}
	if t.width >= 0 {
		spec.WriteString(strconv.Itoa(t.width))
	}
	if t.precision >= 0 {
		spec.WriteByte('.')
		spec.WriteString(strconv.Itoa(t.precision))
	}
	return t.prefix + "{:" + spec.String() + "d}" + t.suffix
}

// Render resolves the template for one file index.
func (t *FilenameTemplate) Render(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		digits = digits[1:]
		sign = "-"
	} else if t.plus {
		sign = "+"
	} else if t.space {
		sign = " "
	}
	if t.precision >= 0 {
		for len(digits) < t.precision {
			digits = "0" + digits
		}
	}
	body := sign + digits
	if t.width >= 0 {
		switch {
		case t.minus:
			for len(body) < t.width {
				body += " "
			}
		case t.zero && t.precision < 0:
			for len(sign)+len(digits) < t.width {
				digits = "0" + digits
			}
			body = sign + digits
		default:
			for len(body) < t.width {
				body = " " + body
			}
		}
	}
	return t.prefix + body + t.suffix
}
