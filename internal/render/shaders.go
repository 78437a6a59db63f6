package render

// The vertex layout must match meshing.Pack:
// x[0:6] y[6:12] z[12:18] face[18:21] water[21] light[22:26].
const chunkVertexShader = `#version 410 core
layout(location = 0) in uint packed;
layout(location = 1) in vec2 uv;

uniform mat4 proj;
uniform mat4 view;
uniform vec3 chunkOrigin;
uniform float maxLight;

out vec2 vUV;
out float vShade;
out float vWater;
out float vFog;

const float faceShade[6] = float[6](0.85, 0.85, 0.75, 0.75, 1.0, 0.55);

void main() {
	vec3 local = vec3(float(packed & 63u), float((packed >> 6) & 63u), float((packed >> 12) & 63u));
	uint face = (packed >> 18) & 7u;
	vWater = float((packed >> 21) & 1u);
	float light = float((packed >> 22) & 15u) / maxLight;

	vec3 world = chunkOrigin + local;
	vec4 eye = view * vec4(world, 1.0);
	gl_Position = proj * eye;

	vUV = uv;
	vShade = light * faceShade[min(face, 5u)];
	vFog = clamp(length(eye.xyz) / 220.0, 0.0, 1.0);
}
`

const chunkFragmentShader = `#version 410 core
in vec2 vUV;
in float vShade;
in float vWater;
in float vFog;

uniform sampler2D atlas;
uniform vec3 fogColor;

out vec4 fragColor;

void main() {
	vec4 tex = texture(atlas, vUV);
	if (tex.a < 0.1) {
		discard;
	}
	float alpha = mix(tex.a, 0.65, vWater);
	vec3 color = mix(tex.rgb * vShade, fogColor, vFog * vFog);
	fragColor = vec4(color, alpha);
}
`
