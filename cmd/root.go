package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "audio-transcriber",
	Short: "Turns recorded audio into sheet music",
	Long:  `Turns a recorded monophonic performance into a two-staff score, served over HTTP or run once from the command line.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
