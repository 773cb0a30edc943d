package pixbuf

import "github.com/gogpu/pixbuf/memory"

// Errors shared by every pixbuf package. Match them with errors.Is.
var (
	ErrInvalidArgument = memory.ErrInvalidArgument
	ErrOutOfMemory     = memory.ErrOutOfMemory
	ErrInvalidSize     = memory.ErrInvalidSize
	ErrIndexOutOfRange = memory.ErrIndexOutOfRange
	ErrUseAfterRelease = memory.ErrUseAfterRelease
)
