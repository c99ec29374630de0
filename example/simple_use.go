package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/d-buckner/humidi/sdk/contracts"
	"github.com/d-buckner/humidi/sdk/humidi"
)

func main() {
	engine, err := humidi.New(
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithClientName("HuMIDI Example"),
	)
	if err != nil {
		fmt.Println("Error creating MIDI engine:", err)
		return
	}
	defer engine.Close()

	if err := engine.RequestAccess(); err != nil {
		fmt.Println("MIDI access refused:", err)
		return
	}

	for _, input := range engine.Inputs() {
		fmt.Printf("Input: %s (%s) [%s]\n", input.Name(), input.Manufacturer(), input.State())
	}

	engine.On(contracts.EventNoteOn, func(ev contracts.Event) {
		note := ev.(contracts.NoteOnEvent)
		fmt.Printf("note on  ch=%d note=%d vel=%d\n", note.Channel, note.Note, note.Velocity)
	})
	engine.On(contracts.EventNoteOff, func(ev contracts.Event) {
		note := ev.(contracts.NoteOffEvent)
		fmt.Printf("note off ch=%d note=%d\n", note.Channel, note.Note)
	})
	engine.On(contracts.EventSustainOn, func(ev contracts.Event) {
		sustain := ev.(contracts.SustainOnEvent)
		fmt.Printf("sustain on ch=%d value=%d\n", sustain.Channel, sustain.Value)
	})
	engine.On(contracts.EventInputDisconnected, func(ev contracts.Event) {
		gone := ev.(contracts.InputDisconnectedEvent)
		fmt.Printf("device gone: %s\n", gone.Device.Name)
	})

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	<-signalChannel
	fmt.Println("Shutting down...")
}
