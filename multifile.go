package goconsolidate

import (
	"fmt"
	"strings"
)

const (
	// TIFFSequenceMimetype is the mimetype of multi-page TIFF sequences.
	TIFFSequenceMimetype = "multipart/related;type=image/tiff"
	// JPEGSequenceMimetype is the mimetype of single-page JPEG sequences.
	JPEGSequenceMimetype = "multipart/related;type=image/jpeg"
	// NPYSequenceMimetype is the mimetype of raw-array-per-file sequences.
	NPYSequenceMimetype = "multipart/related;type=application/x-npy"
)

// npyFilenameTemplate is the fixed filename pattern of NPY sequences. NPY
// writers do not announce a template, so the consolidator hard-codes one.
const npyFilenameTemplate = "%d.npy"

// newMultiFileConsolidator constructs the shared machinery of the per-frame
// file sequence variants. The default single asset is cleared because assets
// are materialized per file at ingest time; the chunk shape defaults to one
// frame per file; for concat join the per-row frame count must be evenly
// divisible by the frames-per-file count, since a file cannot be split
// across rows.
func newMultiFileConsolidator(resource Resource, key DataKey, allowedExts []string, defaultTemplate string, opts ...ConsolidatorOpt) (*MultiFileConsolidator, error) {
	base, err := NewBaseConsolidator(resource, key, opts...)
	if err != nil {
		return nil, err
	}
	c := &MultiFileConsolidator{BaseConsolidator: *base}
	if len(c.chunkShape) == 0 {
		c.chunkShape = []int{1}
	}
	framesPerFile := c.chunkShape[0]
	if c.joinMethod == JoinStack {
		c.filesPerRow = 1
	} else {
		rowFrames := 1
		if len(c.datumShape) > 0 {
			rowFrames = c.datumShape[0]
		}
		if rowFrames%framesPerFile != 0 {
			return nil, NewIssue(IssueTypeInvalidChunkShape, StepConstruct,
				fmt.Sprintf("resource %s stores %d frames per row which cannot be split into files of %d frames",
					resource.UID, rowFrames, framesPerFile), nil)
		}
		c.filesPerRow = rowFrames / framesPerFile
	}
	spec := resource.Parameters.Template
	if spec == "" {
		spec = defaultTemplate
	}
	c.template, err = TranslateTemplate(spec)
	if err != nil {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("resource %s declares an invalid filename template", resource.UID), err)
	}
	if !hasAllowedExtension(c.template.suffix, allowedExts) {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("filename template %q does not end in one of %v", spec, allowedExts), nil)
	}
	c.assets = []Asset{}
	c.adapterParameters = c.AdapterParameters
	return c, nil
}

// hasAllowedExtension reports whether the template suffix ends in one of the
// allowed file extensions, case insensitively.
func hasAllowedExtension(suffix string, allowed []string) bool {
	lower := strings.ToLower(suffix)
	for _, ext := range allowed {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// MultiFileConsolidator consolidates resources whose rows live in a sequence
// of per-frame files, one or more frames per file.
type MultiFileConsolidator struct {
	BaseConsolidator
	template    *FilenameTemplate
	filesPerRow int
}

// FilesPerRow returns the number of physical files holding one row.
func (c *MultiFileConsolidator) FilesPerRow() int {
	return c.filesPerRow
}

// Ingest materializes one asset with a resolved filename per file index
// covered by the newly added rows, then delegates the row and shape
// bookkeeping to the base consolidator.
func (c *MultiFileConsolidator) Ingest(notification ArrivalNotification) (Patch, error) {
	for row := notification.Indices.Start; row < notification.Indices.Stop; row++ {
		for file := row * c.filesPerRow; file < (row+1)*c.filesPerRow; file++ {
			c.assets = append(c.assets, Asset{
				URI:           joinURI(c.resource.URI, c.template.Render(file)),
				ParameterName: assetParameterMulti,
				Ordinal:       file,
			})
		}
	}
	return c.BaseConsolidator.Ingest(notification)
}

// AdapterParameters announces the compiled filename template in its explicit
// placeholder form and forwards the optional squeeze flag.
func (c *MultiFileConsolidator) AdapterParameters() map[string]interface{} {
	p := map[string]interface{}{"template": c.template.Placeholder()}
	if c.resource.Parameters.Squeeze != nil {
		p["squeeze"] = *c.resource.Parameters.Squeeze
	}
	return p
}

// NewTIFFConsolidator returns a new instance of the TIFFConsolidator.
func NewTIFFConsolidator(resource Resource, key DataKey, opts ...ConsolidatorOpt) (*TIFFConsolidator, error) {
	if resource.Mimetype != TIFFSequenceMimetype {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("mimetype %s is not supported by the TIFF consolidator", resource.Mimetype), nil)
	}
	c, err := newMultiFileConsolidator(resource, key, []string{".tif", ".tiff"}, "%05d.tif", opts...)
	if err != nil {
		return nil, err
	}
	t := &TIFFConsolidator{MultiFileConsolidator: *c}
	t.adapterParameters = t.AdapterParameters
	return t, nil
}

// TIFFConsolidator consolidates multi-page TIFF image sequences.
type TIFFConsolidator struct {
	MultiFileConsolidator
}

// NewJPEGConsolidator returns a new instance of the JPEGConsolidator.
func NewJPEGConsolidator(resource Resource, key DataKey, opts ...ConsolidatorOpt) (*JPEGConsolidator, error) {
	if resource.Mimetype != JPEGSequenceMimetype {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("mimetype %s is not supported by the JPEG consolidator", resource.Mimetype), nil)
	}
	c, err := newMultiFileConsolidator(resource, key, []string{".jpeg", ".jpg"}, "%05d.jpg", opts...)
	if err != nil {
		return nil, err
	}
	j := &JPEGConsolidator{MultiFileConsolidator: *c}
	j.adapterParameters = j.AdapterParameters
	return j, nil
}

// JPEGConsolidator consolidates single-page JPEG image sequences.
type JPEGConsolidator struct {
	MultiFileConsolidator
}

// NewNPYConsolidator returns a new instance of the NPYConsolidator. NPY
// sequences store exactly one frame per file under its hard-coded filename
// pattern and stack rows along a fresh leading dimension unless the resource
// says otherwise.
func NewNPYConsolidator(resource Resource, key DataKey, opts ...ConsolidatorOpt) (*NPYConsolidator, error) {
	if resource.Mimetype != NPYSequenceMimetype {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("mimetype %s is not supported by the NPY consolidator", resource.Mimetype), nil)
	}
	resource.Parameters.ChunkShape = []int{1}
	resource.Parameters.Template = npyFilenameTemplate
	opts = append([]ConsolidatorOpt{ConsolidatorWithJoinDefaults(JoinStack, true)}, opts...)
	c, err := newMultiFileConsolidator(resource, key, []string{".npy"}, npyFilenameTemplate, opts...)
	if err != nil {
		return nil, err
	}
	n := &NPYConsolidator{MultiFileConsolidator: *c}
	n.adapterParameters = n.AdapterParameters
	return n, nil
}

// NPYConsolidator consolidates raw-array-per-file sequences.
type NPYConsolidator struct {
	MultiFileConsolidator
}
