package acetape

/*------------------------------------------------------------------
 *
 * Name:	SaveMain
 *
 * Purpose:	Turn .tap images into tape audio.
 *
 * Description:	Every record of every input file goes out in one
 *		session, so a whole set of files can be loaded on the
 *		Ace one after another from the same recording.
 *
 *		Output goes to a .WAV file by default, to a raw PCM
 *		file with --raw, or straight to a sound card with
 *		--device.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/doismellburning/acetape/src/soundcard"
)

func SaveMain() {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.  Command line options override it.")
	var audioSampleRate = pflag.IntP("audio-sample-rate", "r", DEFAULT_SAMPLES_PER_SEC, "Audio sample rate.")
	var bitsPerSample = pflag.IntP("bits-per-sample", "b", DEFAULT_BITS_PER_SAMPLE, "Bits per audio sample: 8, 16, 24 or 32.")
	var twoSoundChannels = pflag.BoolP("two-sound-channels", "2", false, "2 channels (stereo) audio rather than one channel.")
	var volume = pflag.IntP("volume", "a", DEFAULT_VOLUME, "Signal amplitude in range of 0 - 100%.")
	var outputFile = pflag.StringP("output-file", "o", "", "Send output to .wav file.")
	var raw = pflag.BoolP("raw", "R", false, "Write raw PCM samples with no .wav header.")
	var device = pflag.StringP("device", "d", "", "Play through this sound card instead of writing a file.  \"default\" for the system default.")
	var logLevel = pflag.String("log-level", "warn", "Log level: debug, info, warn, error.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Generate Jupiter Ace tape audio from .tap files.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file.tap...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -o game.wav game.tap\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "    44100 samples per second, 16 bit mono, 90%% volume.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -d default -a 70 game.tap\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "    Play directly into the Ace's EAR socket.\n")
	}

	// !!! PARSE !!!
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version {
		printVersion(os.Stdout, false)
		os.Exit(0)
	}

	var logger, logErr = NewLogger(os.Stderr, *logLevel)
	if logErr != nil {
		fmt.Printf("%s\n", logErr)
		os.Exit(1)
	}

	var cfg = DefaultConfig()

	if *configFile != "" {
		var err error

		cfg, err = LoadConfigFile(*configFile)
		if err != nil {
			fmt.Printf("Couldn't read configuration: %s\n", err)
			os.Exit(1)
		}
	}

	if pflag.CommandLine.Changed("audio-sample-rate") {
		cfg.SampleRate = *audioSampleRate
		fmt.Printf("Audio sample rate set to %d samples / second.\n", cfg.SampleRate)
	}

	if pflag.CommandLine.Changed("bits-per-sample") {
		cfg.BitsPerSample = *bitsPerSample
		fmt.Printf("%d bits per audio sample.\n", cfg.BitsPerSample)
	}

	if *twoSoundChannels {
		cfg.Channels = 2
		fmt.Printf("2 channels of sound rather than 1.\n")
	}

	if pflag.CommandLine.Changed("volume") {
		cfg.VolumePercent = *volume
		fmt.Printf("Volume set to %d%%.\n", cfg.VolumePercent)
	}

	if *device != "" && cfg.BitsPerSample != soundcard.BITS_PER_SAMPLE {
		cfg.BitsPerSample = soundcard.BITS_PER_SAMPLE
		fmt.Printf("Sound card output is always %d bits per sample.\n", cfg.BitsPerSample)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	if len(pflag.Args()) == 0 {
		fmt.Printf("Specify .tap file name on command line.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	if *outputFile == "" && *device == "" {
		fmt.Printf("Specify an output file with -o or a sound card with -d.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	var records []Record

	for _, tapFileName := range pflag.Args() {
		var r, err = ReadTapFile(tapFileName)
		if err != nil {
			fmt.Printf("Couldn't read %s: %s\n", tapFileName, err)
			os.Exit(1)
		}

		logger.Info("read tap file", "file", tapFileName, "records", len(r))

		records = append(records, r...)
	}

	var out io.WriteCloser
	var err error

	switch {
	case *device != "":
		out, err = soundcard.OpenPlayback(*device, cfg.SampleRate, cfg.Channels)
	case *raw:
		out, err = os.Create(*outputFile) //nolint:gosec // User-supplied output file from CLI
	default:
		out, err = CreateWav(*outputFile, cfg)
	}

	if err != nil {
		fmt.Printf("Couldn't open audio output: %s\n", err)
		os.Exit(1)
	}

	enc, err := NewEncoder(out, cfg, logger)
	if err != nil {
		out.Close()
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	for i, rec := range records {
		if err := enc.WriteRecord(rec.Header, rec.Data); err != nil {
			enc.Close() //nolint:errcheck // Already failing
			fmt.Printf("Failed writing record %d: %s\n", i+1, err)
			os.Exit(1)
		}

		logger.Info("record written", "name", FileName(rec.Header), "type", FileTypeName(FileType(rec.Header)), "bytes", len(rec.Data))
	}

	if err := enc.Close(); err != nil {
		fmt.Printf("Failed finishing audio output: %s\n", err)
		os.Exit(1)
	}

	var seconds = float64(enc.Written()) / float64(cfg.FrameBytes()*cfg.SampleRate)

	fmt.Printf("%d records, %d audio bytes.  Duration = %.1f seconds.\n", len(records), enc.Written(), seconds)
}
