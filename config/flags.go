package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ytaudio/download"
	"ytaudio/internal/timeutil"
)

// MergeFromFlags parses command-line flags and overrides config values.
// Only flags that were given on the command line are applied. The URL may be
// passed as the single positional argument, before or after the flags.
func (c *Config) MergeFromFlags(args []string) error {
	fs := flag.NewFlagSet("ytaudio", flag.ContinueOnError)
	fs.Usage = printUsage

	// Source
	url := fs.String("url", "", "YouTube video URL (or pass it as the argument)")
	input := fs.String("input", "", "Local media file to process instead of downloading")

	// Config and env files (read by LoadConfig before this function is called)
	_ = fs.String("config", "", "Path to config file (default: search standard locations)")
	_ = fs.String("env-file", "", "Path to a .env file (default: ./.env if present)")

	// Download settings
	var output, quality string
	var audioOnly bool
	fs.StringVar(&output, "output", "", "Output directory (default: ~/Downloads)")
	fs.StringVar(&output, "o", "", "Shorthand for -output")
	fs.StringVar(&quality, "quality", "", "Video quality: "+download.QualityNames())
	fs.StringVar(&quality, "q", "", "Shorthand for -quality")
	fs.BoolVar(&audioOnly, "audio-only", false, "Download audio only (as MP4)")
	fs.BoolVar(&audioOnly, "a", false, "Shorthand for -audio-only")
	backend := fs.String("backend", "", "Download backend: ytdlp, native")

	// Split settings
	split := fs.Bool("split", false, "Split the result into parts")
	chunkDuration := fs.Float64("chunk-duration", 0, "Maximum part length in seconds")
	splitDir := fs.String("split-dir", "", "Directory for the parts (default: next to the file)")
	cleanupPartial := fs.Bool("cleanup-partial", false, "Remove parts already written when a split fails")

	// Audio settings
	reencode := fs.Bool("reencode", false, "Re-encode the audio after downloading")
	audioCodec := fs.String("audio-codec", "", "Audio codec for -reencode")
	audioBitrate := fs.String("audio-bitrate", "", "Audio bitrate, e.g., 192k")
	audioSampleRate := fs.Int("audio-sample-rate", 0, "Audio sample rate in Hz")
	audioChannels := fs.Int("audio-channels", 0, "Number of audio channels")
	keepSource := fs.Bool("keep-source", false, "Keep the downloaded file after re-encoding")

	// External programs
	ffmpegPath := fs.String("ffmpeg", "", "Path to ffmpeg (default: search PATH)")
	ffprobePath := fs.String("ffprobe", "", "Path to ffprobe (default: search PATH)")
	ytDlpPath := fs.String("yt-dlp", "", "Path to yt-dlp (default: search PATH)")

	// Behavioral flags
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&verbose, "v", false, "Shorthand for -verbose")
	dryRun := fs.Bool("dry-run", false, "Show configuration and plan without running")
	showVersion := fs.Bool("version", false, "Print version and exit")
	saveConfig := fs.String("save-config", "", "Write the effective settings to a YAML file and exit")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	isSet := func(names ...string) bool {
		for _, name := range names {
			if set[name] {
				return true
			}
		}
		return false
	}

	switch len(positional) {
	case 0:
	case 1:
		if isSet("url") && *url != positional[0] {
			return fmt.Errorf("URL given twice: %q and %q", *url, positional[0])
		}
		c.URL = positional[0]
	default:
		return fmt.Errorf("expected a single URL, got %d arguments: %s", len(positional), strings.Join(positional, " "))
	}

	if isSet("url") {
		c.URL = *url
	}
	if isSet("input") {
		c.Input = *input
	}

	if isSet("output", "o") {
		c.OutputDir = output
	}
	if isSet("quality", "q") {
		c.Quality = quality
	}
	if isSet("audio-only", "a") {
		c.AudioOnly = audioOnly
	}
	if isSet("backend") {
		c.Backend = *backend
	}

	if isSet("split") {
		c.Split.Enabled = *split
	}
	if isSet("chunk-duration") {
		c.Split.ChunkDuration = *chunkDuration
	}
	if isSet("split-dir") {
		c.Split.OutputDir = *splitDir
	}
	if isSet("cleanup-partial") {
		c.Split.CleanupPartial = *cleanupPartial
	}

	if isSet("reencode") {
		c.Audio.Reencode = *reencode
	}
	if isSet("audio-codec") {
		c.Audio.Codec = *audioCodec
	}
	if isSet("audio-bitrate") {
		c.Audio.Bitrate = *audioBitrate
	}
	if isSet("audio-sample-rate") {
		c.Audio.SampleRate = *audioSampleRate
	}
	if isSet("audio-channels") {
		c.Audio.Channels = *audioChannels
	}
	if isSet("keep-source") {
		c.Audio.KeepSource = *keepSource
	}

	if isSet("ffmpeg") {
		c.Tools.FFmpeg = *ffmpegPath
	}
	if isSet("ffprobe") {
		c.Tools.FFprobe = *ffprobePath
	}
	if isSet("yt-dlp") {
		c.Tools.YtDlp = *ytDlpPath
	}

	if isSet("log-level") {
		c.LogLevel = *logLevel
	}
	if isSet("verbose", "v") {
		c.Verbose = verbose
	}
	if isSet("dry-run") {
		c.DryRun = *dryRun
	}
	if *showVersion {
		c.ShowVersion = true
	}
	if isSet("save-config") {
		c.SaveConfig = *saveConfig
	}

	return nil
}

// parseInterspersed parses args allowing positional arguments between flags.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}

		// Everything after "--" is positional.
		if len(args) > fs.NArg() && args[len(args)-fs.NArg()-1] == "--" {
			return append(positional, fs.Args()...), nil
		}

		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// printUsage prints help text
func printUsage() {
	fmt.Fprintf(os.Stderr, `ytaudio - Download YouTube videos (or just their audio) as MP4 and split long files

USAGE:
  ytaudio [OPTIONS] URL
  ytaudio -input FILE [OPTIONS]

SOURCE:
  URL
        YouTube video URL
  -input string
        Local media file to split or re-encode instead of downloading

DOWNLOAD:
  -o, -output string
        Output directory (default: ~/Downloads)
  -q, -quality string
        Video quality: %s (default: best)
  -a, -audio-only
        Download audio only (as MP4)
  -backend string
        Download backend: ytdlp (needs yt-dlp) or native (default: ytdlp)

SPLIT:
  -split
        Split the result into parts of at most -chunk-duration seconds
  -chunk-duration float
        Maximum part length in seconds (default: 2100)
  -split-dir string
        Directory for the parts (default: next to the file)
  -cleanup-partial
        Remove parts already written when a split fails

AUDIO RE-ENCODE:
  -reencode
        Re-encode the audio after downloading
  -audio-codec string
        libmp3lame, aac, libopus, libvorbis, flac, pcm_s16le (default: libmp3lame)
  -audio-bitrate string
        Audio bitrate, e.g., 128k, 192k, 320k (default: 192k)
  -audio-sample-rate int
        Audio sample rate in Hz (default: 44100)
  -audio-channels int
        Number of audio channels (default: 2)
  -keep-source
        Keep the downloaded file after re-encoding

TOOLS:
  -ffmpeg, -ffprobe, -yt-dlp string
        Explicit program paths (default: search PATH)

BEHAVIOR:
  -config string
        Path to config file (default: search ./ytaudio.yaml, ~/.ytaudio/config.yaml, /etc/ytaudio/config.yaml)
  -env-file string
        Path to a .env file (default: ./.env if present)
  -log-level string
        debug, info, warn, error (default: info)
  -v, -verbose
        Enable verbose logging
  -dry-run
        Show effective configuration and plan without running
  -save-config string
        Write the effective settings (without URL or -input) to a YAML file and exit
  -version
        Print version and exit

EXAMPLES:
  # Best quality video into ~/Downloads
  ytaudio https://www.youtube.com/watch?v=dQw4w9WgXcQ

  # 720p into a custom folder
  ytaudio -q 720p -o ~/Videos https://youtu.be/dQw4w9WgXcQ

  # Audio only, split into 35 minute parts
  ytaudio -a -split https://youtu.be/dQw4w9WgXcQ

  # Split an existing file into 10 minute parts
  ytaudio -input lecture.m4a -split -chunk-duration 600

  # Make audio-only 10 minute parts the default
  ytaudio -a -split -chunk-duration 600 -save-config ~/.ytaudio/config.yaml

ENVIRONMENT:
  Every option can be set as YTAUDIO_<NAME>, e.g. YTAUDIO_OUTPUT_DIR,
  YTAUDIO_SPLIT_CHUNK_DURATION, YTAUDIO_AUDIO_CODEC, YTAUDIO_TOOLS_FFMPEG.

  Priority: CLI flags > Environment > Config file > Defaults

`, download.QualityNames())
}

// PrintConfig writes the effective configuration to w
func (c *Config) PrintConfig(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "                 Effective Configuration                  ")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	if c.Input != "" {
		fmt.Fprintf(w, "Input:          %s\n", c.Input)
	} else {
		fmt.Fprintf(w, "URL:            %s\n", c.URL)
		fmt.Fprintf(w, "Output Dir:     %s\n", c.OutputDir)
		fmt.Fprintf(w, "Quality:        %s\n", c.Quality)
		fmt.Fprintf(w, "Audio Only:     %v\n", c.AudioOnly)
		fmt.Fprintf(w, "Backend:        %s\n", c.Backend)
	}
	if c.ConfigFile != "" {
		fmt.Fprintf(w, "Config File:    %s\n", c.ConfigFile)
	}

	fmt.Fprintln(w, "\nSplit Settings:")
	fmt.Fprintf(w, "  Enabled:        %v\n", c.Split.Enabled)
	if c.Split.Enabled {
		fmt.Fprintf(w, "  Chunk Duration: %s (%g seconds)\n", timeutil.Humanize(c.Split.ChunkDuration), c.Split.ChunkDuration)
		if c.Split.OutputDir != "" {
			fmt.Fprintf(w, "  Output Dir:     %s\n", c.Split.OutputDir)
		}
		fmt.Fprintf(w, "  Cleanup:        %v\n", c.Split.CleanupPartial)
	}

	fmt.Fprintln(w, "\nAudio Settings:")
	fmt.Fprintf(w, "  Re-encode:    %v\n", c.Audio.Reencode)
	if c.Audio.Reencode {
		fmt.Fprintf(w, "  Codec:        %s\n", c.Audio.Codec)
		fmt.Fprintf(w, "  Bitrate:      %s\n", c.Audio.Bitrate)
		fmt.Fprintf(w, "  Sample Rate:  %d Hz\n", c.Audio.SampleRate)
		fmt.Fprintf(w, "  Channels:     %d\n", c.Audio.Channels)
		fmt.Fprintf(w, "  Keep Source:  %v\n", c.Audio.KeepSource)
	}

	fmt.Fprintln(w, "\nBehavioral Flags:")
	fmt.Fprintf(w, "  Log Level:     %s\n", c.LogLevel)
	fmt.Fprintf(w, "  Verbose:       %v\n", c.Verbose)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}
