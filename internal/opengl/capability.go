package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/quality"
)

// QueryCapabilities reads the driver strings and texture limit from the
// current context. Must run on the thread that owns the context.
func QueryCapabilities() quality.CapabilityInfo {
	var maxTex int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTex)
	return quality.CapabilityInfo{
		Renderer:       glString(gl.RENDERER),
		Vendor:         glString(gl.VENDOR),
		Version:        glString(gl.VERSION),
		MaxTextureSize: int(maxTex),
	}
}

func glString(name uint32) string {
	p := gl.GetString(name)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}
