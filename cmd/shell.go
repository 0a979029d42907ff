package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// errShellExit ends the interactive loop.
var errShellExit = errors.New("exit")

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command loop",
	Long: `Start the interactive command loop. Commands mirror the one-shot
subcommands under their short names:

  ls [-c category] [-t tag] [-p page] [-f expr...]
  se <query>... [-c category] [-t tag] [-p page] [-f expr...]
  dl <id>... [-l location | -c directory]
  tls
  trm <id> [-d]
  refresh
  history
  help
  exit`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("byrbt-bot shell. Type 'help' for commands, 'exit' to leave.")
	for {
		fmt.Print("byrbt> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := dispatchShellLine(ctx, line)
		if errors.Is(err, errShellExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func dispatchShellLine(ctx context.Context, line string) error {
	tokens := strings.Fields(line)
	command, rest := tokens[0], tokens[1:]

	switch command {
	case "exit", "quit":
		return errShellExit
	case "help":
		printShellHelp()
		return nil
	case "refresh":
		if err := operations.Refresh(ctx); err != nil {
			return err
		}
		fmt.Println("Logged in, session cookies refreshed.")
		return nil
	case "tls":
		return showClientStatus(ctx)
	case "history":
		return showHistory(ctx, 20, "")
	}

	req, err := parseShellArgs(command, rest)
	if err != nil {
		return err
	}

	switch command {
	case "ls", "se":
		return listTorrents(ctx, req.category, req.tag, req.page, req.query, req.filter, "")
	case "dl":
		return downloadTorrents(ctx, req.ids, req.location, req.dir, false)
	case "trm":
		return removeClientTorrent(ctx, strconv.Itoa(req.ids[0]), req.deleteData)
	default:
		return fmt.Errorf("unknown command '%s' (try 'help')", command)
	}
}

// shellRequest is one parsed shell command line.
type shellRequest struct {
	category   string
	tag        string
	query      string
	filter     string
	location   string
	dir        string
	page       int
	deleteData bool
	ids        []int
}

// parseShellArgs parses the shell's short flag grammar. Flags take the
// following token as their value, except -d (boolean) and -f, which
// swallows the rest of the line so filter expressions need no quoting.
// The meaning of -c depends on the command: a category name for ls/se,
// a save directory for dl.
func parseShellArgs(command string, tokens []string) (shellRequest, error) {
	var req shellRequest
	var positionals []string

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			positionals = append(positionals, tok)
			continue
		}

		if tok == "-d" {
			req.deleteData = true
			continue
		}
		if tok == "-f" {
			if i+1 >= len(tokens) {
				return req, fmt.Errorf("flag -f needs an expression")
			}
			req.filter = strings.Join(tokens[i+1:], " ")
			break
		}

		if i+1 >= len(tokens) {
			return req, fmt.Errorf("flag %s needs a value", tok)
		}
		value := tokens[i+1]
		i++

		switch tok {
		case "-c":
			if command == "dl" {
				req.dir = value
			} else {
				req.category = value
			}
		case "-t":
			req.tag = value
		case "-p":
			page, err := strconv.Atoi(value)
			if err != nil || page < 0 {
				return req, fmt.Errorf("invalid page '%s'", value)
			}
			req.page = page
		case "-i":
			req.query = value
		case "-l":
			req.location = value
		default:
			return req, fmt.Errorf("unknown flag %s", tok)
		}
	}

	switch command {
	case "se":
		if len(positionals) > 0 {
			req.query = strings.Join(positionals, " ")
		}
		if req.query == "" {
			return req, fmt.Errorf("se needs a search query")
		}
	case "ls":
		if len(positionals) > 0 {
			return req, fmt.Errorf("ls takes no arguments, only flags")
		}
	case "dl":
		if len(positionals) == 0 {
			return req, fmt.Errorf("dl needs at least one torrent id")
		}
		ids, err := parseTorrentIDs(positionals)
		if err != nil {
			return req, err
		}
		req.ids = ids
	case "trm":
		if len(positionals) != 1 {
			return req, fmt.Errorf("trm needs exactly one torrent id")
		}
		ids, err := parseTorrentIDs(positionals)
		if err != nil {
			return req, err
		}
		req.ids = ids
	}

	return req, nil
}

func printShellHelp() {
	fmt.Print(`Commands:
  ls                    list torrents
  se <query>...         search torrents
  dl <id>...            download and hand to the client
  tls                   show the client's torrents
  trm <id> [-d]         remove from the client (-d deletes data)
  refresh               force a fresh tracker login
  history               show recorded downloads
  exit                  leave the shell

Flags for ls/se:  -c category  -t promotion tag  -p page  -f filter expression (rest of line)
Flags for dl:     -l named location  -c save directory
`)
}
