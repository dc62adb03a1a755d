package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	streamdecode "github.com/pbjson/streamdecode"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
			os.Exit(1)
		}
	}()

	var (
		filename      string
		descSetPath   string
		messageName   string
		ignoreUnknown bool
		verbose       bool
	)

	flag.StringVar(&filename, "file", "", "json input filename (stdin if omitted)")
	flag.StringVar(&descSetPath, "descset", "", "path to a binary-serialized FileDescriptorSet")
	flag.StringVar(&messageName, "message", "", "full name of the message type to decode into")
	flag.BoolVar(&ignoreUnknown, "ignore-unknown", false, "skip unknown JSON members instead of erroring")
	flag.BoolVar(&verbose, "v", false, "trace frame and well-known-type transitions to stderr")
	flag.Parse()

	if descSetPath == "" || messageName == "" {
		fatalError("both -descset and -message are required")
	}

	var stderr io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		stderr = colorable.NewColorableStderr()
	}

	msgDesc, err := loadMessageDescriptor(descSetPath, messageName)
	if err != nil {
		fatalError("error loading descriptor: %s", err)
	}

	var input io.Reader
	if filename != "" {
		f, err := os.Open(filename)
		if err != nil {
			fatalError("error opening %q: %s", filename, err)
		}
		defer f.Close()
		input = f
	} else {
		input = os.Stdin
	}

	sink := streamdecode.NewDynamicSink(msgDesc)

	opts := streamdecode.Options{IgnoreJSONUnknown: ignoreUnknown}
	if verbose {
		opts.Logger = hclog.New(&hclog.LoggerOptions{
			Name:   "pbjson-decode",
			Level:  hclog.Trace,
			Output: stderr,
		})
	}

	driver, err := streamdecode.Create(streamdecode.NewMessage(msgDesc), sink, opts)
	if err != nil {
		fatalError("error: %s", err)
	}

	if err := feedAll(driver, input); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return
		}
		fatalError("error: %s", err)
	}

	out, err := proto.Marshal(sink.Message().Interface())
	if err != nil {
		fatalError("error marshalling result: %s", err)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return
		}
		fatalError("error writing output: %s", err)
	}
}

// feedAll pumps chunks of input through Driver.Feed until EOF, then calls
// End. Unconsumed bytes (a token split across reads) stay in pending and
// are prepended to the next chunk.
func feedAll(driver *streamdecode.Driver, input io.Reader) error {
	buf := make([]byte, 64*1024)
	var pending []byte
	for {
		n, readErr := input.Read(buf)
		pending = append(pending, buf[:n]...)
		for len(pending) > 0 {
			consumed, err := driver.Feed(pending)
			if err != nil {
				return err
			}
			pending = pending[consumed:]
			if consumed == 0 {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	return driver.End()
}

// loadMessageDescriptor reads a binary-serialized descriptorpb.FileDescriptorSet
// and resolves the requested message by its full proto name.
func loadMessageDescriptor(path, name string) (protoreflect.MessageDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fdSet descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fdSet); err != nil {
		return nil, fmt.Errorf("parsing FileDescriptorSet: %w", err)
	}
	files, err := protodesc.NewFiles(&fdSet)
	if err != nil {
		return nil, fmt.Errorf("building file registry: %w", err)
	}
	desc, err := files.FindDescriptorByName(protoreflect.FullName(name))
	if err != nil {
		return nil, fmt.Errorf("message %q not found: %w", name, err)
	}
	msgDesc, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%q is not a message type", name)
	}
	return msgDesc, nil
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
