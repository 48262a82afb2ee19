package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

func formatOf(f gpu.Format) glFormat {
	switch f {
	case gpu.FormatRGBA16F:
		return glFormat{gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT}
	case gpu.FormatDepth32F:
		return glFormat{gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT}
	default:
		return glFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}
	}
}

func textureTarget(d gpu.TextureDesc) uint32 {
	switch {
	case d.Cube:
		return gl.TEXTURE_CUBE_MAP
	case d.Slices() > 1:
		return gl.TEXTURE_2D_ARRAY
	default:
		return gl.TEXTURE_2D
	}
}

func addressOf(a gpu.AddressMode) int32 {
	switch a {
	case gpu.AddressClamp:
		return gl.CLAMP_TO_EDGE
	case gpu.AddressBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.REPEAT
	}
}

func compareOf(c gpu.CompareFunc) uint32 {
	switch c {
	case gpu.CompareLessEqual:
		return gl.LEQUAL
	case gpu.CompareAlways:
		return gl.ALWAYS
	default:
		return gl.LESS
	}
}

// ptr returns a pointer to the first byte of data, or nil when it is empty.
func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
