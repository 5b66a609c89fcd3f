package relevance

import (
	"strings"
)

// Ecosystem tags used for scoring and downstream categorization.
const (
	EcosystemFlux    = "Flux"
	EcosystemWan     = "Wan"
	EcosystemQwen    = "Qwen"
	EcosystemSDXL    = "SDXL"
	EcosystemSD15    = "SD 1.5"
	EcosystemComfyUI = "ComfyUI"
	EcosystemMulti   = "Multi"
)

// DetectEcosystem classifies text into one ecosystem tag. Detection follows a
// fixed priority order, so a text mentioning several ecosystems always
// resolves the same way regardless of word order.
func DetectEcosystem(text string) string {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "wan2", "wanvideo", "wan video", "wan2.1", " wan "):
		return EcosystemWan
	case containsAny(t, "qwen", "qwen2"):
		return EcosystemQwen
	case strings.Contains(t, "flux"):
		return EcosystemFlux
	case containsAny(t, "sdxl", "pony", "illustrious"):
		return EcosystemSDXL
	case containsAny(t, "sd 1.5", "sd1.5", "sd15", "stable-diffusion-v1"):
		return EcosystemSD15
	case containsAny(t, "comfyui", "comfy ui", "comfy-ui", "comfy"):
		return EcosystemComfyUI
	default:
		return EcosystemMulti
	}
}

// GuessSource derives the downstream Source column from an item URL.
func GuessSource(url string) string {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "github.com"):
		return "GitHub"
	case strings.Contains(u, "huggingface.co"):
		return "HuggingFace"
	case strings.Contains(u, "civitai.com"):
		return "Civitai"
	case strings.Contains(u, "openmodeldb.info"):
		return "OpenModelDB"
	case strings.Contains(u, "docs") || strings.Contains(u, "documentation"):
		return "Docs"
	default:
		return "Blog"
	}
}

// GuessCategory maps title+body text onto the fixed category set. Motion is
// checked before Control so video items do not land under Control.
func GuessCategory(title, body string) string {
	t := strings.ToLower(title + " " + body)
	switch {
	case containsAny(t, "motion", "video", "animate", "animation", "i2v", "t2v", "vid2vid"):
		return "Motion"
	case containsAny(t, "controlnet", "control net", "ip-adapter", "ipadapter",
		"ip adapter", "pose", "depth", "canny", "inpaint", "reference"):
		return "Control"
	case containsAny(t, "lora", "lycoris", "lcm", "adapter"):
		return "LoRA / Adapter"
	case containsAny(t, "upscal", "esrgan", "swinir", "restore", "enhance", "super resolution"):
		return "Postproceso"
	case containsAny(t, "manager", "downloader", "installer", "hub", "sync"):
		return "Tooling"
	case containsAny(t, "paper", "arxiv", "doc", "guide", "tutorial", "survey"):
		return "Conocimiento"
	case containsAny(t, "node", "custom node", "comfyui-", "workflow", "pipeline"):
		return "Workflow / Node"
	case containsAny(t, "checkpoint", "model", "flux", "sdxl", "stable diffusion", "qwen"):
		return "Generación"
	default:
		return "Workflow / Node"
	}
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
