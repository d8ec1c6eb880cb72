package main

import (
	"os"

	"golang.org/x/term"
)

// terminalReport records which standard streams are attached to a terminal
// and the first size one of them reported.
type terminalReport struct {
	Size    *terminalSize `json:"size,omitempty"`
	Streams []streamProbe `json:"streams"`
}

type terminalSize struct {
	Stream string `json:"stream"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type streamProbe struct {
	Stream   string `json:"stream"`
	Terminal bool   `json:"terminal"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Error    string `json:"error,omitempty"`
}

var standardStreams = []struct {
	name string
	file *os.File
}{
	{"stdin", os.Stdin},
	{"stdout", os.Stdout},
	{"stderr", os.Stderr},
}

func probeTerminal() terminalReport {
	var report terminalReport
	for _, s := range standardStreams {
		probe := probeStream(s.name, int(s.file.Fd()))
		if report.Size == nil && probe.Width > 0 {
			report.Size = &terminalSize{Stream: probe.Stream, Width: probe.Width, Height: probe.Height}
		}
		report.Streams = append(report.Streams, probe)
	}
	return report
}

func probeStream(name string, fd int) streamProbe {
	probe := streamProbe{Stream: name}
	if fd < 0 || !term.IsTerminal(fd) {
		return probe
	}
	probe.Terminal = true
	width, height, err := term.GetSize(fd)
	if err != nil {
		probe.Error = err.Error()
		return probe
	}
	probe.Width, probe.Height = width, height
	return probe
}
