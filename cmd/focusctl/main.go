package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"focusguard/cmd/focusctl/ui"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8645", "Daemon address")
	flag.Parse()

	client := ui.NewClient(*addr)
	p := tea.NewProgram(ui.NewRootModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "focusctl: %v\n", err)
		os.Exit(1)
	}
}
