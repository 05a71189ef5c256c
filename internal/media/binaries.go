package media

import (
	"fmt"
	"os"
	"os/exec"
)

// resolved executables
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// FindBinaries locates ffmpeg and ffprobe. SUBDESK_FFMPEG_PATH and
// SUBDESK_FFPROBE_PATH take precedence over PATH.
func FindBinaries() (BinaryPaths, error) {
	ffmpegPath, err := findBinary("ffmpeg", "SUBDESK_FFMPEG_PATH")
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err := findBinary("ffprobe", "SUBDESK_FFPROBE_PATH")
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func findBinary(name, envVar string) (string, error) {
	if p := os.Getenv(envVar); p != "" {
		if !fileExists(p) {
			return "", fmt.Errorf("%s=%s does not point to a file", envVar, p)
		}
		return p, nil
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH (set %s): %w", name, envVar, err)
	}
	return p, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
