package cli

func regCommands() {
	//Root
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(populationCmd)
	rootCmd.AddCommand(exportCmd)
}
