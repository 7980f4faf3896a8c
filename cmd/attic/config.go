package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow prints every effective setting, flattened and sorted.
func runConfigShow(cmd *cobra.Command, args []string) error {
	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Printf("# config file: %s\n", file)
	} else {
		fmt.Println("# no config file found, showing defaults")
	}

	keys := viper.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s: %v\n", key, viper.Get(key))
	}
	return nil
}
