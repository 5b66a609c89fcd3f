package relevance

import (
	"regexp"
	"strings"
)

// noiseExpr matches terms that mark an item as noise regardless of other signals.
var noiseExpr = regexp.MustCompile(`(?i)\b(showcase|prompt[_\-\s]?pack|style[_\-\s]?pack|art[_\-\s]?pack|` +
	`gallery|aesthetic|wallpaper|nsfw|embedding[_\-\s]?pack|` +
	`test\d*$|sandbox|dummy|placeholder|backup|personal|private)\b`)

// signalExpr matches the technical vocabulary of the tracked ecosystem.
var signalExpr = regexp.MustCompile(`(?i)\b(comfyui|controlnet|lora|lycori|lcm|flux|wan|qwen|sdxl|` +
	`sd[_\-\s]?1[_\-\s]?5|checkpoint|upscaler|ipadapter|ip[_\-\s]?adapter|` +
	`animatediff|video|motion|node|workflow|loader|pipeline|` +
	`diffusion|inpaint|outpaint|refiner|vae|clip|t5|` +
	`gguf|safetensor|hunyuan|mochi|ltx|cogvideo|wan2|` +
	`image[_\-\s]?to[_\-\s]?video|text[_\-\s]?to[_\-\s]?video)\b`)

// IsRelevant keeps items that carry at least one technical signal term
// and none of the noise terms.
func IsRelevant(text string) bool {
	if noiseExpr.MatchString(text) {
		return false
	}
	return signalExpr.MatchString(text)
}

// trivialNameExpr matches repo/model names that are clearly personal or throwaway.
var trivialNameExpr = regexp.MustCompile(`(?i)^(test|sandbox|backup|temp|tmp|untitled|model|lora|my[_\-]|[a-z]{1,4}\d{1,4}$)`)

// IsTrivialName reports whether the short name (after the last slash) looks
// like a placeholder rather than a real project.
func IsTrivialName(name string) bool {
	parts := strings.Split(name, "/")
	short := parts[len(parts)-1]
	return trivialNameExpr.MatchString(short)
}
