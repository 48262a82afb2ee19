// Package shaders provides embedded GLSL shader sources.
//
// Vertex shaders receive left-handed matrices with depth in [0, 1] and remap
// it to GL clip space before writing gl_Position.
package shaders

import _ "embed"

// ObjectVertexShader transforms lit scene geometry.
//
//go:embed object.vert
var ObjectVertexShader string

// ObjectFragmentShader shades scene geometry with the light list and the
// directional shadow map.
//
//go:embed object.frag
var ObjectFragmentShader string

// ShadowVertexShader renders depth from the shadow-casting light.
//
//go:embed shadow.vert
var ShadowVertexShader string

// SkyVertexShader places the sky cube at the far plane around the camera.
//
//go:embed sky.vert
var SkyVertexShader string

// SkyFragmentShader samples the sky cube map.
//
//go:embed sky.frag
var SkyFragmentShader string

// FullscreenVertexShader emits one triangle covering the viewport.
//
//go:embed fullscreen.vert
var FullscreenVertexShader string

// BlurFragmentShader is a box blur.
//
//go:embed blur.frag
var BlurFragmentShader string

// DitherFragmentShader pixelates and applies ordered dithering.
//
//go:embed dither.frag
var DitherFragmentShader string
