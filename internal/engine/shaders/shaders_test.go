package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/skylight/internal/engine/entity"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/postprocess"
	"github.com/Faultbox/skylight/internal/engine/renderer"
	"github.com/Faultbox/skylight/internal/engine/shadow"
	"github.com/Faultbox/skylight/internal/engine/sky"
)

func TestSourcesDeclareEngineVariables(t *testing.T) {
	tests := []struct {
		name string
		code string
		vars []string
	}{
		{"object.vert", ObjectVertexShader, []string{
			entity.VarWorld, entity.VarWorldInvTranspose, entity.VarView, entity.VarProjection,
			shadow.VarLightView, shadow.VarLightProjection,
		}},
		{"object.frag", ObjectFragmentShader, []string{
			renderer.VarTime, renderer.VarCameraPosition, renderer.VarLights, renderer.VarLightCount,
			renderer.VarShadowsEnabled, shadow.VarShadowMap, shadow.VarShadowSampler,
			material.VarColorTint, material.VarRoughness, material.VarUVScale, material.VarUVOffset,
			"DiffuseTexture", "DiffuseSampler",
		}},
		{"shadow.vert", ShadowVertexShader, []string{entity.VarWorld, shadow.VarLightView, shadow.VarLightProjection}},
		{"sky.vert", SkyVertexShader, []string{sky.VarView, sky.VarProjection}},
		{"sky.frag", SkyFragmentShader, []string{sky.VarTexture, sky.VarSampler}},
		{"blur.frag", BlurFragmentShader, []string{
			postprocess.VarInput, postprocess.VarInputSampler, postprocess.VarPixelUV, postprocess.VarBlurRadius,
		}},
		{"dither.frag", DitherFragmentShader, []string{
			postprocess.VarInput, postprocess.VarInputSampler, postprocess.VarPixelUV, postprocess.VarPixelSize,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := gpu.Reflect(tt.code)
			for _, v := range tt.vars {
				_, ok := layout.Lookup(v)
				assert.True(t, ok, "%s does not declare %s", tt.name, v)
			}
		})
	}
}

func TestVertexShadersRemapDepth(t *testing.T) {
	for name, code := range map[string]string{
		"object.vert": ObjectVertexShader,
		"shadow.vert": ShadowVertexShader,
	} {
		assert.Contains(t, code, "gl_Position.z * 2.0 - gl_Position.w", name)
	}
	assert.Contains(t, SkyVertexShader, ".xyww")
}

func TestSourcesTargetGL41(t *testing.T) {
	for _, code := range []string{
		ObjectVertexShader, ObjectFragmentShader, ShadowVertexShader, SkyVertexShader,
		SkyFragmentShader, FullscreenVertexShader, BlurFragmentShader, DitherFragmentShader,
	} {
		assert.True(t, strings.HasPrefix(code, "#version 410 core"))
	}
}
