package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/audiolab-ai/endpointer/pkg/vad"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		thresholdDB   float64
		frameLength   int
		hopLength     int
		minSilenceDur float64
		minSpeechDur  float64
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Detect speech endpoints in a mono 16-bit PCM WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vad.NewSignalVAD(vad.SignalVADConfig{
				SilenceThresholdDB: thresholdDB,
				FrameLength:        frameLength,
				HopLength:          hopLength,
				MinSilenceDur:      minSilenceDur,
				MinSpeechDur:       minSpeechDur,
			})
			if err != nil {
				return err
			}

			intervals, err := v.SpeechEndpointsFromFile(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(intervals); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&thresholdDB, "threshold-db", vad.DefaultSilenceThresholdDB,
		"decibel margin below the reference treated as silence (35 for clean audio, 25 for noisy)")
	cmd.Flags().IntVar(&frameLength, "frame-length", vad.DefaultFrameLength, "analysis window size in samples")
	cmd.Flags().IntVar(&hopLength, "hop-length", vad.DefaultHopLength, "stride between analysis windows in samples")
	cmd.Flags().Float64Var(&minSilenceDur, "min-silence", vad.DefaultMinSilenceDur, "minimum silence duration in seconds")
	cmd.Flags().Float64Var(&minSpeechDur, "min-speech", vad.DefaultMinSpeechDur, "minimum speech duration in seconds")

	return cmd
}
