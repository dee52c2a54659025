package audio

import (
	"ytaudio/command"
	"ytaudio/models"
)

// AudioCommand extends the base Command interface with audio-specific options.
type AudioCommand interface {
	command.Command
	SetCodec(codec string) AudioCommand
	SetBitrate(bitrate string) AudioCommand
	SetSampleRate(rate int) AudioCommand
	SetChannels(channels int) AudioCommand
	SetProgressCallback(duration float64, callback models.ProgressCallback) AudioCommand
}
