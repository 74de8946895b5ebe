package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/cabac-go/config"
	"github.com/kpfaulkner/cabac-go/container"
	"github.com/kpfaulkner/cabac-go/util"
)

const usage = `usage:
  cabac encode -profile p.yaml [-in symbols.txt] [-out unit.cbc]
  cabac decode [-in unit.cbc] [-out symbols.txt]
  cabac contexts -profile p.yaml

common flags: -debug, -cpuprofile dir
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

type commonFlags struct {
	profile    string
	in         string
	out        string
	debug      bool
	cpuProfile string
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("missing command")
	}

	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stdout)
	var f commonFlags
	fs.StringVar(&f.profile, "profile", "", "YAML coder profile")
	fs.StringVar(&f.in, "in", "-", "input file, - for stdin")
	fs.StringVar(&f.out, "out", "-", "output file, - for stdout")
	fs.BoolVar(&f.debug, "debug", false, "debug logging")
	fs.StringVar(&f.cpuProfile, "cpuprofile", "", "write a CPU profile into this directory")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if f.debug {
		log.SetLevel(log.DebugLevel)
	}
	if f.cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(f.cpuProfile), profile.Quiet).Stop()
	}

	switch cmd {
	case "encode":
		return encode(f, stdin, stdout)
	case "decode":
		return decode(f, stdin, stdout)
	case "contexts":
		return contexts(f, stdout)
	}
	fmt.Fprint(stdout, usage)
	return errors.Errorf("unknown command %q", cmd)
}

func encode(f commonFlags, stdin io.Reader, stdout io.Writer) error {
	if f.profile == "" {
		return errors.New("encode needs -profile")
	}
	p, err := config.LoadProfile(f.profile)
	if err != nil {
		return err
	}
	cfg, err := p.SequenceConfig()
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(f.in, stdin)
	if err != nil {
		return err
	}
	defer closeIn()
	symbols, err := readSymbols(in)
	if err != nil {
		return err
	}

	u, err := container.Encode(symbols, cfg, p.CoderOptions(), p.Bypass)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	log.Infof("encoded %d symbols into %d bytes (%s)", len(symbols), len(u.Payload),
		util.IfThenElse(p.Bypass, "bypass", "context coded"))

	return writeOutput(f.out, stdout, func(w io.Writer) error {
		return container.Write(w, u)
	})
}

func decode(f commonFlags, stdin io.Reader, stdout io.Writer) error {
	in, closeIn, err := openInput(f.in, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	u, err := container.Read(in)
	if err != nil {
		return err
	}
	symbols, err := u.Decode()
	if err != nil {
		return errors.Wrap(err, "decode")
	}
	log.Infof("decoded %d symbols from %d bytes", len(symbols), len(u.Payload))

	return writeOutput(f.out, stdout, func(w io.Writer) error {
		return writeSymbols(w, symbols)
	})
}

// contexts reports the bank size a profile needs.
func contexts(f commonFlags, stdout io.Writer) error {
	if f.profile == "" {
		return errors.New("contexts needs -profile")
	}
	p, err := config.LoadProfile(f.profile)
	if err != nil {
		return err
	}
	cfg, err := p.SequenceConfig()
	if err != nil {
		return err
	}
	n, err := cfg.NumContexts()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s/%s: %d contexts\n", cfg.Binarization, cfg.ContextModel, n)
	return nil
}

func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	fh, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open %s", name)
	}
	return fh, func() { fh.Close() }, nil
}

func writeOutput(name string, stdout io.Writer, write func(io.Writer) error) error {
	if name == "-" {
		return write(stdout)
	}
	fh, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", name)
	}
	if err := write(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
