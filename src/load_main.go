package acetape

/*------------------------------------------------------------------
 *
 * Name:	LoadMain
 *
 * Purpose:	Recover Jupiter Ace tape records from audio recordings.
 *
 * Description:	Each .WAV file named on the command line is decoded
 *		in turn and every record found is listed.  With -o the
 *		records from all of them are saved as one .tap image.
 *
 *		With --raw the inputs are headerless PCM and the sample
 *		format comes from the options.  With --device the
 *		sound card is recorded for --seconds instead.
 *
 *		--error-if-less-than and --error-if-greater-than make
 *		this usable from test scripts.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/doismellburning/acetape/src/soundcard"
)

type loadSource struct {
	name   string
	stream io.ReadCloser
	cfg    Config
}

func LoadMain() {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.  Command line options override it.")
	var channelStr = pflag.String("channel", "mix", "Stereo channel to decode: mix, left or right.")
	var level = pflag.IntP("level", "L", DEFAULT_LEVEL, "Detection level in range of -100 to 100% of full scale.")
	var hysteresis = pflag.IntP("hysteresis", "H", DEFAULT_HYSTERESIS, "Hysteresis either side of the detection level, 0 to 100% of full scale.")
	var invert = pflag.BoolP("invert", "i", false, "Swap high and low.  For recordings with reversed polarity.")
	var filter = pflag.BoolP("filter", "f", false, "Smooth the signal with a moving average before detection.")
	var filterOrder = pflag.Int("filter-order", 0, "Moving average length in samples, 2 - 55.  0 picks one from the sample rate.")
	var raw = pflag.BoolP("raw", "R", false, "Inputs are raw PCM samples with no .wav header.")
	var audioSampleRate = pflag.IntP("audio-sample-rate", "r", DEFAULT_SAMPLES_PER_SEC, "Audio sample rate, for --raw and --device.")
	var bitsPerSample = pflag.IntP("bits-per-sample", "b", DEFAULT_BITS_PER_SAMPLE, "Bits per audio sample, for --raw.")
	var twoSoundChannels = pflag.BoolP("two-sound-channels", "2", false, "2 channels (stereo), for --raw and --device.")
	var device = pflag.StringP("device", "d", "", "Record from this sound card instead of reading files.  \"default\" for the system default.")
	var seconds = pflag.IntP("seconds", "s", 60, "How long to record from the sound card.")
	var outputFile = pflag.StringP("output-file", "o", "", "Save recovered records to this .tap file.")
	var hexDisplay = pflag.BoolP("hex-display", "x", false, "Print record contents as hexadecimal bytes.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede each record line with a strftime format time stamp.")
	var errorIfLessThan = pflag.Int("error-if-less-than", -1, "Error if less than this number of records recovered.")
	var errorIfGreaterThan = pflag.Int("error-if-greater-than", -1, "Error if greater than this number of records recovered.")
	var logLevel = pflag.String("log-level", "warn", "Log level: debug, info, warn, error.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s recovers Jupiter Ace tape files from audio recordings.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... <WAV FILE>...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -o games.tap side-a.wav side-b.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -d default -s 120 -o recorded.tap\n", os.Args[0])
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

	if pflag.CommandLine.Changed("channel") {
		var sel, err = ParseChannelSelect(*channelStr)
		if err != nil {
			fmt.Printf("%s\n", err)
			os.Exit(1)
		}

		cfg.ChannelSelect = sel
	}

	if pflag.CommandLine.Changed("level") {
		cfg.DetectionLevelPercent = *level
		fmt.Printf("Detection level set to %d%%.\n", cfg.DetectionLevelPercent)
	}

	if pflag.CommandLine.Changed("hysteresis") {
		cfg.HysteresisPercent = *hysteresis
		fmt.Printf("Hysteresis set to %d%%.\n", cfg.HysteresisPercent)
	}

	if *invert {
		cfg.Invert = true
	}

	if *filter {
		cfg.FilterEnabled = true
	}

	if pflag.CommandLine.Changed("filter-order") {
		cfg.FilterEnabled = true
		cfg.FilterOrder = *filterOrder
	}

	if pflag.CommandLine.Changed("audio-sample-rate") {
		cfg.SampleRate = *audioSampleRate
	}

	if pflag.CommandLine.Changed("bits-per-sample") {
		cfg.BitsPerSample = *bitsPerSample
	}

	if *twoSoundChannels {
		cfg.Channels = 2
	}

	if *device != "" {
		cfg.BitsPerSample = soundcard.BITS_PER_SAMPLE
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	if len(pflag.Args()) == 0 && *device == "" {
		fmt.Printf("Specify .WAV file name on command line.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	var reporter, err = NewReporter(os.Stdout, *timestampFormat, *hexDisplay)
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	var sources []func() (loadSource, error)

	if *device != "" {
		sources = append(sources, func() (loadSource, error) {
			var maxFrames = int64(*seconds) * int64(cfg.SampleRate)
			var c, err = soundcard.OpenCapture(*device, cfg.SampleRate, cfg.Channels, maxFrames)

			return loadSource{name: *device, stream: c, cfg: cfg}, err
		})
	}

	for _, name := range pflag.Args() {
		sources = append(sources, func() (loadSource, error) {
			if *raw {
				var f, err = os.Open(name) //nolint:gosec // User-supplied input file from CLI
				return loadSource{name: name, stream: f, cfg: cfg}, err
			}

			var w, err = OpenWav(name)
			if err != nil {
				return loadSource{name: name}, err
			}

			return loadSource{name: name, stream: w, cfg: w.ApplyTo(cfg)}, nil
		})
	}

	var start_time = time.Now()
	var records []Record
	var rejected = 0

	for _, open := range sources {
		var src, err = open()
		if err != nil {
			fmt.Printf("Couldn't open %s for read: %s\n", src.name, err)
			os.Exit(1)
		}

		fmt.Printf("%d samples per second.  %d bits per sample.  %d audio channels.\n",
			src.cfg.SampleRate, src.cfg.BitsPerSample, src.cfg.Channels)

		var found, nrej, loadErr = loadRecords(src, logger, reporter)

		records = append(records, found...)
		rejected += nrej

		if loadErr != nil {
			fmt.Printf("Error reading %s: %s\n", src.name, loadErr)
			os.Exit(1)
		}

		fmt.Printf("%d from %s\n", len(found), src.name)
	}

	reporter.Summary(rejected, time.Since(start_time))

	if *outputFile != "" {
		if err := WriteTapFile(*outputFile, records); err != nil {
			fmt.Printf("Couldn't write %s: %s\n", *outputFile, err)
			os.Exit(1)
		}

		fmt.Printf("%d records saved to %s\n", len(records), *outputFile)
	}

	if *errorIfLessThan != -1 && len(records) < *errorIfLessThan {
		fmt.Printf("\n * * * TEST FAILED: number recovered is less than %d * * * \n", *errorIfLessThan)
		os.Exit(1)
	}

	if *errorIfGreaterThan != -1 && len(records) > *errorIfGreaterThan {
		fmt.Printf("\n * * * TEST FAILED: number recovered is greater than %d * * * \n", *errorIfGreaterThan)
		os.Exit(1)
	}
}

// loadRecords runs one load session over src.  The stream is closed when it returns.
func loadRecords(src loadSource, logger *log.Logger, reporter *Reporter) ([]Record, int, error) {
	var dec, err = NewDecoder(src.stream, src.cfg, logger.With("input", src.name))
	if err != nil {
		src.stream.Close()
		return nil, 0, err
	}
	defer dec.Close()

	var recovery = NewRecovery(dec, logger.With("input", src.name))
	var records []Record

	for {
		var rec, ok = recovery.Next()
		if !ok {
			break
		}

		reporter.Record(rec)
		records = append(records, rec)
	}

	var levels = dec.AudioLevels()

	fmt.Printf("%s: %s\n", src.name, levels)

	if levels.Frames > 0 && !src.cfg.Invert && 100*levels.Peak <= float64(src.cfg.DetectionLevelPercent+src.cfg.HysteresisPercent) {
		logger.Warn("input never rises above the detection level", "input", src.name, "peak", levels.Peak)
	}

	return records, recovery.Rejected(), recovery.Err()
}
