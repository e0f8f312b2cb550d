// Package aec holds the small set of types shared by the stat kernels,
// scene-change engine, adaptive encode controller and bitrate controller:
// codec identity, frame type, and the picture-order-count each frame is
// addressed by.
package aec

// Codec identifies the target encoder the control core is driving.
type Codec int

const (
	AVC Codec = iota
	HEVC
	AV1
)

func (c Codec) String() string {
	switch c {
	case AVC:
		return "AVC"
	case HEVC:
		return "HEVC"
	case AV1:
		return "AV1"
	default:
		return "unknown"
	}
}

// ColorFormat identifies the input pixel layout.
type ColorFormat int

const (
	NV12 ColorFormat = iota
	RGB4
)

// FrameType is the coding type assigned to a frame.
type FrameType int

const (
	Undef FrameType = iota
	IDR
	I
	P
	B
	Dummy
)

func (t FrameType) String() string {
	switch t {
	case IDR:
		return "IDR"
	case I:
		return "I"
	case P:
		return "P"
	case B:
		return "B"
	case Dummy:
		return "DUMMY"
	default:
		return "UNDEF"
	}
}

// LtrKind distinguishes the two long-term-reference styles the controller
// can assign to a frame.
type LtrKind int

const (
	LtrNone LtrKind = iota
	Altr
	Aref
)

// POC is a frame's display-order index.
type POC = uint32
