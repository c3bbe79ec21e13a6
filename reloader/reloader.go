// Package reloader provides a method to load a file whenever it changes.
package reloader

import (
	"os"
	"time"
)

// readFile is indirected so tests can simulate read failures.
var readFile = os.ReadFile

// Wrap time.Tick so we can override it in tests.
var makeTicker = func() (func(), <-chan time.Time) {
	t := time.NewTicker(1 * time.Second)
	return t.Stop, t.C
}

// Reloader represents an ongoing reloader task.
type Reloader struct {
	stopChan chan<- struct{}
}

// Stop stops an active reloader, release its resources.
func (r *Reloader) Stop() {
	r.stopChan <- struct{}{}
}

// New loads the filename provided and calls onChange with its contents. It
// then spawns a goroutine that polls the file's mtime once a second, calling
// onChange again with any new contents whenever the file is modified, and
// calling onError if the file can't be stat'd or read. The first load, and
// the first call to onChange, are run synchronously, so it is easy for the
// caller to check for errors and fail fast: New returns an error if it
// occurs on the first load. Every later error is sent to onError instead,
// since by then the caller has moved on to other work (in this module's
// case, serving matches out of whatever hostname set was last loaded
// successfully) and a bad reload shouldn't take that down with it.
func New(filename string, onChange func([]byte) error, onError func(error)) (*Reloader, error) {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	b, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	stopChan := make(chan struct{})
	tickerStop, tickChan := makeTicker()
	loop := func() {
		for {
			select {
			case <-stopChan:
				tickerStop()
				return
			case <-tickChan:
				currentFileInfo, err := os.Stat(filename)
				if err != nil {
					onError(err)
					continue
				}
				if currentFileInfo.ModTime().After(fileInfo.ModTime()) {
					b, err := readFile(filename)
					if err != nil {
						onError(err)
						continue
					}
					fileInfo = currentFileInfo
					if err := onChange(b); err != nil {
						onError(err)
					}
				}
			}
		}
	}
	err = onChange(b)
	if err != nil {
		tickerStop()
		return nil, err
	}
	go loop()
	return &Reloader{stopChan}, nil
}
