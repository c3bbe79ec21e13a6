// Package cmd provides utilities that underlie the command-line tools in
// cmd/, so that each tool's main.go can stay small: parse flags, build a
// config, call cmd.NewLogger, run, cmd.FailOnError on the way out.
package cmd

import (
	"fmt"
	"log"
	"log/syslog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"

	blog "github.com/quietdns/hosttrie/log"
)

// NewLogger constructs a blog.Logger from a SyslogConfig, dials syslog, and
// installs the result as the process-wide singleton via blog.Set. Every
// command in cmd/ calls this exactly once, early in main.
func NewLogger(sc SyslogConfig) blog.Logger {
	syslogger, err := syslog.Dial("", "", syslog.LOG_INFO|syslog.LOG_LOCAL0, "")
	if err != nil {
		log.Fatalf("unable to dial syslog: %s", err)
	}
	logger, err := blog.New(syslogger, sc.StdoutLevel, sc.SyslogLevel)
	if err != nil {
		log.Fatalf("unable to construct logger: %s", err)
	}
	err = blog.Set(logger)
	if err != nil {
		log.Fatalf("unable to set logger: %s", err)
	}
	return logger
}

// FailOnError exits and prints an error message if we encountered a problem.
func FailOnError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, err)
		os.Exit(1)
	}
}

// Fail exits and prints the given message, for failures that aren't
// carrying a Go error value (a bad flag combination, say).
func Fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

// DebugServer starts an HTTP server exposing net/http/pprof's handlers on
// addr. It never returns; callers that want it running alongside the rest
// of the program should launch it in its own goroutine.
func DebugServer(addr string) {
	if addr == "" {
		log.Fatalf("unable to boot debug server because no address was given for it. Set DebugAddr.")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("unable to boot debug server on %#v: %s", addr, err)
	}
	log.Printf("booting debug server at %#v", addr)
	log.Println(http.Serve(ln, nil))
}
