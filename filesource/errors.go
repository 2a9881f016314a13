package filesource

import "errors"

var (
	ErrNotWavFile            = errors.New("filesource: not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("filesource: unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("filesource: only PCM 16-bit supported")
	ErrUnsupportedWavChunks  = errors.New("filesource: unsupported WAV chunks")
	ErrNotAiffFile           = errors.New("filesource: not an AIFF file")
	ErrUnsupportedAiffLayout = errors.New("filesource: unsupported AIFF layout")
)
