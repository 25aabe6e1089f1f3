package gpu

import _ "embed"

// Embedded WGSL shader sources, compiled at pipeline creation.

//go:embed shaders/life.wgsl
var lifeShaderSource string
