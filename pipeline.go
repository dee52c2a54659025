package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"ytaudio/command"
	"ytaudio/command/audio"
	"ytaudio/command/extract"
	"ytaudio/config"
	"ytaudio/download"
	"ytaudio/ffprobe"
	"ytaudio/internal/timeutil"
	"ytaudio/models"
	"ytaudio/segmenter"
	"ytaudio/tools"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// pipeline runs download, optional re-encode and optional split for one config.
type pipeline struct {
	cfg        *config.Config
	tc         *tools.Toolchain
	log        *zap.Logger
	out        io.Writer
	downloader download.Downloader
	started    time.Time
}

func newPipeline(cfg *config.Config, tc *tools.Toolchain, log *zap.Logger, out io.Writer) *pipeline {
	p := &pipeline{cfg: cfg, tc: tc, log: log, out: out}
	if cfg.NeedsDownload() {
		switch cfg.Backend {
		case config.BackendNative:
			p.downloader = download.NewNativeDownloader(0, log)
		default:
			p.downloader = download.NewYtDlpDownloader(tc.YtDlp, log)
		}
	}
	return p
}

func (p *pipeline) request() download.Request {
	return download.Request{
		URL:       p.cfg.URL,
		OutputDir: p.cfg.OutputDir,
		Quality:   download.Quality(p.cfg.Quality),
		AudioOnly: p.cfg.AudioOnly,
	}
}

func (p *pipeline) segmenter() *segmenter.Segmenter {
	return segmenter.NewSegmenter(extract.NewExtractor(p.tc.FFmpeg, p.log), p.log).
		SetChunkLength(p.cfg.Split.ChunkDuration).
		SetOutputDir(p.cfg.Split.OutputDir).
		SetCleanupPartial(p.cfg.Split.CleanupPartial)
}

func (p *pipeline) transcoder() *audio.Transcoder {
	return audio.NewTranscoder(p.tc.FFmpeg, audio.Settings{
		Codec:      p.cfg.Audio.Codec,
		Bitrate:    p.cfg.Audio.Bitrate,
		SampleRate: p.cfg.Audio.SampleRate,
		Channels:   p.cfg.Audio.Channels,
		KeepSource: p.cfg.Audio.KeepSource,
	}, p.log)
}

func (p *pipeline) phase(title string) {
	fmt.Fprintln(p.out, title)
	fmt.Fprintln(p.out, rule)
}

// run executes the whole workflow. On failure the returned report lists
// whatever was left on disk.
func (p *pipeline) run(ctx context.Context) (*models.RunReport, error) {
	p.started = time.Now()
	report := &models.RunReport{Source: p.cfg.URL}

	fmt.Fprintln(p.out, "╔════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(p.out, "║                    YTAUDIO - PIPELINE START                    ║")
	fmt.Fprintln(p.out, "╚════════════════════════════════════════════════════════════════╝")

	// PHASE 1: Download (or take the local file)
	if p.cfg.NeedsDownload() {
		p.phase("⬇️  Phase 1: Download")
		if p.cfg.AudioOnly {
			fmt.Fprintln(p.out, "  Audio-only mode: Downloading audio as MP4...")
		}
		fmt.Fprintf(p.out, "  Downloading from: %s\n", p.cfg.URL)
		fmt.Fprintf(p.out, "  Target folder:    %s\n", p.cfg.OutputDir)

		result, err := p.downloader.Download(ctx, p.request())
		if err != nil {
			return report, fmt.Errorf("download failed: %w", err)
		}
		report.Downloaded = result.Path
		report.Title = result.Title
		report.Duration = result.Duration.Seconds()
		fmt.Fprintf(p.out, "  ✓ Saved: %s\n\n", result.Path)
	} else {
		p.phase("📂 Phase 1: Local Input")
		report.Source = p.cfg.Input
		report.Downloaded = p.cfg.Input
		fmt.Fprintf(p.out, "  Input: %s\n\n", p.cfg.Input)
	}

	// Duration from ffprobe is authoritative whenever we post-process.
	prober := ffprobe.NewProber(p.tc.FFprobe, p.log)

	// PHASE 2: Re-encode
	if p.cfg.Audio.Reencode {
		p.phase("🎵 Phase 2: Audio Re-encode")
		duration, err := segmenter.ProbeDuration(ctx, prober, report.Downloaded)
		if err != nil {
			return report, err
		}
		report.Duration = duration

		out, err := p.transcoder().Transcode(ctx, report.Downloaded, report.Duration)
		if err != nil {
			return report, fmt.Errorf("audio re-encode failed: %w", err)
		}
		report.Transcoded = out
		fmt.Fprintf(p.out, "  ✓ Re-encoded: %s\n\n", out)
	}

	// PHASE 3: Split
	if p.cfg.Split.Enabled {
		p.phase("✂️  Phase 3: Split")
		fmt.Fprintf(p.out, "  Part limit: %s\n", timeutil.Humanize(p.cfg.Split.ChunkDuration))

		parts, total, err := p.segmenter().SegmentProbed(ctx, prober, report.FinalPath())
		report.Parts = parts
		if total > 0 {
			report.Duration = total
		}
		if errors.Is(err, segmenter.ErrInvalidDuration) {
			return report, err
		}
		if err != nil {
			return report, fmt.Errorf("split failed: %w", err)
		}
		fmt.Fprintf(p.out, "  Duration:   %s\n", timeutil.Humanize(report.Duration))
		fmt.Fprintf(p.out, "  ✓ %d part(s)\n\n", len(parts))
	} else {
		report.Parts = []models.OutputFile{{
			Window: models.SegmentWindow{Index: 1, Start: 0, Length: report.Duration},
			Path:   report.FinalPath(),
		}}
	}

	if err := report.Validate(); err != nil {
		return report, fmt.Errorf("inconsistent result: %w", err)
	}
	return report, nil
}

// dryRun prints the effective configuration and the commands a run would use.
func (p *pipeline) dryRun(ctx context.Context) error {
	fmt.Fprintln(p.out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(p.out, "                      DRY RUN MODE")
	fmt.Fprintln(p.out, "═══════════════════════════════════════════════════════════")
	p.cfg.PrintConfig(p.out)

	if p.cfg.NeedsDownload() {
		fmt.Fprintln(p.out, "\nDownload:")
		if d, ok := p.downloader.(*download.YtDlpDownloader); ok {
			cmd := d.Command(p.request()).BuildCommand(ctx, p.cfg.URL)
			fmt.Fprintf(p.out, "  %s\n", command.Render(cmd.Args[0], cmd.Args[1:]))
		} else {
			fmt.Fprintf(p.out, "  native %s download of %s (quality %s)\n", p.request().Kind(), p.cfg.URL, p.cfg.Quality)
		}
		if p.cfg.Split.Enabled || p.cfg.Audio.Reencode {
			fmt.Fprintln(p.out, "\n  Re-encode and split commands depend on the downloaded file and are planned after download.")
		}
		fmt.Fprintln(p.out, "\n✓ Configuration is valid. Nothing was downloaded.")
		return nil
	}

	duration, err := segmenter.ProbeDuration(ctx, ffprobe.NewProber(p.tc.FFprobe, p.log), p.cfg.Input)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nInput duration: %s (%s)\n", timeutil.Humanize(duration), timeutil.FormatSeconds(duration))

	splitInput := p.cfg.Input
	if p.cfg.Audio.Reencode {
		b, err := p.transcoder().Builder(p.cfg.Input, duration)
		if err != nil {
			return err
		}
		line, err := b.DryRun()
		if err != nil {
			return err
		}
		fmt.Fprintln(p.out, "\nRe-encode:")
		fmt.Fprintf(p.out, "  %s\n", line)
		splitInput = b.GetOutputPath()
	}

	if p.cfg.Split.Enabled {
		plan, err := p.segmenter().Plan(splitInput, duration)
		if err != nil {
			return err
		}

		fmt.Fprintf(p.out, "\nSplit plan (%d part(s)):\n", len(plan))
		if len(plan) == 1 {
			fmt.Fprintf(p.out, "  no split needed, %s stays as is\n", splitInput)
		} else {
			lines, err := extract.NewExtractor(p.tc.FFmpeg, p.log).Plan(splitInput, plan)
			if err != nil {
				return err
			}
			for i, out := range plan {
				fmt.Fprintf(p.out, "  %s → %s\n", out.Window, filepath.Base(out.Path))
				fmt.Fprintf(p.out, "    %s\n", lines[i])
			}
		}
	}

	fmt.Fprintln(p.out, "\n✓ Configuration is valid. No files were written.")
	return nil
}

func (p *pipeline) printSummary(report *models.RunReport) {
	kind := "Video"
	if p.cfg.AudioOnly || report.Transcoded != "" {
		kind = "Audio"
	}
	target := filepath.Dir(report.FinalPath())
	if report.WasSplit() {
		target = filepath.Dir(report.Parts[0].Path)
	}

	fmt.Fprintln(p.out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(p.out, "                     ✅ SUCCESS!")
	fmt.Fprintln(p.out, "═══════════════════════════════════════════════════════════")
	if report.Title != "" {
		fmt.Fprintf(p.out, "  Title:       %s\n", report.Title)
	}
	if report.Duration > 0 {
		fmt.Fprintf(p.out, "  Duration:    %s\n", timeutil.Humanize(report.Duration))
	}
	if report.WasSplit() {
		fmt.Fprintf(p.out, "  Parts:       %d\n", len(report.Parts))
		for _, part := range report.Parts {
			fmt.Fprintf(p.out, "    %s  %s\n", filepath.Base(part.Path), timeutil.Humanize(part.Window.Length))
		}
	} else {
		fmt.Fprintf(p.out, "  Output:      %s\n", report.FinalPath())
		if info, err := os.Stat(report.FinalPath()); err == nil {
			fmt.Fprintf(p.out, "  Size:        %.2f MB\n", float64(info.Size())/(1024*1024))
		}
	}
	if !p.started.IsZero() {
		fmt.Fprintf(p.out, "  Total time:  %s\n", timeutil.Humanize(time.Since(p.started).Seconds()))
	}
	fmt.Fprintln(p.out, "═══════════════════════════════════════════════════════════")
	if p.cfg.NeedsDownload() {
		fmt.Fprintf(p.out, "Download complete! %s saved to %s\n", kind, target)
	} else {
		fmt.Fprintf(p.out, "Done! %s saved to %s\n", kind, target)
	}
}

// printLeftovers lists the files a failed run left behind.
func (p *pipeline) printLeftovers(report *models.RunReport) {
	if report == nil {
		return
	}
	if report.Downloaded != "" {
		fmt.Fprintf(p.out, "  Source kept: %s\n", report.FinalPath())
	}
	for _, part := range report.Parts {
		fmt.Fprintf(p.out, "  Part on disk: %s\n", part.Path)
	}
}
