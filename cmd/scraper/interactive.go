package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	modeSearch = "1"
	modeLinks  = "2"
)

var errInvalidMode = errors.New("invalid mode")

func runInteractiveCmd(cmd *cobra.Command, _ []string) error {
	mode, items, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if mode == modeSearch {
		return run(cmd, searchStrategy(items))
	}
	return run(cmd, linksStrategy(items))
}

// prompt asks for the mode and then for the comma-separated input of that mode.
func prompt(in *bufio.Reader, out io.Writer) (mode string, items []string, err error) {
	fmt.Fprint(out, "Select mode:\n1 - Search by query\n2 - Direct links\n> ")
	mode, err = readLine(in)
	if err != nil {
		return "", nil, err
	}

	switch mode {
	case modeSearch:
		fmt.Fprint(out, "Enter one or more queries separated by commas: ")
	case modeLinks:
		fmt.Fprint(out, "Enter links separated by commas:\n> ")
	default:
		return "", nil, fmt.Errorf("%w: %q", errInvalidMode, mode)
	}

	line, err := readLine(in)
	if err != nil {
		return "", nil, err
	}
	return mode, splitList(line), nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
