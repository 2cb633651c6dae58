package pipeline

import "fmt"

// Stages at which a file can fail.
const (
	StageProbe      = "probe"
	StageOpen       = "open"
	StageDecode     = "decode"
	StagePreprocess = "preprocess"
	StageInfer      = "infer"
	StageRender     = "render"
	StageWrite      = "write"
	StageFinalize   = "finalize"
	StageRemux      = "remux"
)

// FileError identifies the input and stage that failed.
type FileError struct {
	Path  string
	Stage string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
