// Package media pulls embedded subtitle tracks out of video containers
// with ffmpeg so they can be imported like any SRT file.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// subtitle track inside a container
type SubtitleStream struct {
	Index    int // absolute stream index in the container
	Position int // 0-based among subtitle streams, as used by -map 0:s:N
	Codec    string
	Language string
	Title    string
	Default  bool
}

// image-based codecs cannot be converted to SRT text
var bitmapCodecs = map[string]bool{
	"hdmv_pgs_subtitle": true,
	"dvd_subtitle":      true,
	"dvb_subtitle":      true,
	"xsub":              true,
}

// IsText reports whether ffmpeg can convert the stream to SRT
func (s SubtitleStream) IsText() bool {
	return !bitmapCodecs[s.Codec]
}

type Extractor struct {
	bin BinaryPaths
}

func NewExtractor() (*Extractor, error) {
	bin, err := FindBinaries()
	if err != nil {
		return nil, err
	}
	return &Extractor{bin: bin}, nil
}

// JSON output from ffprobe -show_streams
type ffprobeStreams struct {
	Streams []struct {
		Index       int    `json:"index"`
		CodecName   string `json:"codec_name"`
		CodecType   string `json:"codec_type"`
		Disposition struct {
			Default int `json:"default"`
		} `json:"disposition"`
		Tags map[string]string `json:"tags"`
	} `json:"streams"`
}

// SubtitleStreams lists the subtitle tracks of a video file
func (e *Extractor) SubtitleStreams(ctx context.Context, videoPath string) ([]SubtitleStream, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	cmd := exec.CommandContext(ctx, e.bin.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseStreams(out.Bytes())
}

func parseStreams(data []byte) ([]SubtitleStream, error) {
	var probe ffprobeStreams
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	streams := []SubtitleStream{}
	for _, s := range probe.Streams {
		if s.CodecType != "" && s.CodecType != "subtitle" {
			continue
		}
		streams = append(streams, SubtitleStream{
			Index:    s.Index,
			Position: len(streams),
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
			Default:  s.Disposition.Default == 1,
		})
	}
	return streams, nil
}

// PickStream chooses the default text track, else the first text track
func PickStream(streams []SubtitleStream) (SubtitleStream, error) {
	var first *SubtitleStream
	for i := range streams {
		s := streams[i]
		if !s.IsText() {
			continue
		}
		if s.Default {
			return s, nil
		}
		if first == nil {
			first = &streams[i]
		}
	}
	if first == nil {
		return SubtitleStream{}, fmt.Errorf("no text subtitle stream found")
	}
	return *first, nil
}

// ExtractSRT converts one subtitle stream to an SRT file at outputPath
func (e *Extractor) ExtractSRT(
	ctx context.Context,
	videoPath string,
	stream SubtitleStream,
	outputPath string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !stream.IsText() {
		return fmt.Errorf("stream %d uses bitmap codec %s", stream.Index, stream.Codec)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"map": fmt.Sprintf("0:s:%d", stream.Position),
			"c:s": "srt",
			"f":   "srt",
		}).
		OverWriteOutput().
		SetFfmpegPath(e.bin.FFmpeg).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg subtitle extraction failed: %w", err)
	}
	return nil
}

// ExtractSRTText extracts the preferred subtitle stream and returns its
// SRT text along with the stream used
func (e *Extractor) ExtractSRTText(ctx context.Context, videoPath string) (string, SubtitleStream, error) {
	streams, err := e.SubtitleStreams(ctx, videoPath)
	if err != nil {
		return "", SubtitleStream{}, err
	}
	stream, err := PickStream(streams)
	if err != nil {
		return "", SubtitleStream{}, fmt.Errorf("%s: %w", videoPath, err)
	}

	tmpDir, err := os.MkdirTemp("", "subdesk-extract-*")
	if err != nil {
		return "", SubtitleStream{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "track.srt")
	if err := e.ExtractSRT(ctx, videoPath, stream, outPath); err != nil {
		return "", SubtitleStream{}, err
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", SubtitleStream{}, fmt.Errorf("failed to read extracted subtitles: %w", err)
	}
	return string(data), stream, nil
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpeg", ".mpg", ".3gp", ".ts":
		return true
	}
	return false
}
