package flags

import (
	"io"
	"os"
	"regexp"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nojima/go-fetch/fetch"
	"github.com/nojima/go-fetch/input"
	"github.com/nojima/go-fetch/output"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

// OptionSet collects every flag-derived option the command needs,
// grouped the way the underlying packages consume them.
type OptionSet struct {
	BodyOptions   input.Options
	FetchOptions  fetch.Options
	OutputOptions output.Options
	Auth          AuthOptions
	RedirectMode  string
}

// AuthOptions carries -a/--auth's user:[password] pair. Password is
// left empty when the user omits it, so the caller knows to prompt
// interactively instead of sending an empty password.
type AuthOptions struct {
	Enabled  bool
	UserName string
	Password string
}

// terminalInfo decouples isatty probing from flag parsing so parse can
// be exercised with fixed terminal assumptions in tests.
type terminalInfo struct {
	stdinIsTerminal  bool
	stdoutIsTerminal bool
}

// Parse parses args against the real terminal, the entry point main.go
// calls.
func Parse(args []string) ([]string, *getopt.Set, *OptionSet, error) {
	return parse(args, terminalInfo{
		stdinIsTerminal:  isatty.IsTerminal(os.Stdin.Fd()),
		stdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	})
}

func parse(args []string, term terminalInfo) ([]string, *getopt.Set, *OptionSet, error) {
	bodyOptions := input.Options{}
	outputOptions := output.Options{}
	fetchOptions := fetch.Options{}
	var ignoreStdin bool
	var authString string
	var redirectMode string
	printFlag := "\000" // "\000" marks "user did not specify --print"
	timeout := "30s"

	flagSet := getopt.New()
	flagSet.SetParameters("[METHOD] URL [REQUEST_ITEM [REQUEST_ITEM ...]]")
	flagSet.BoolVarLong(&bodyOptions.Form, "form", 'f', "serialize body as application/x-www-form-urlencoded")
	flagSet.BoolVarLong(&bodyOptions.JSON, "json", 'j', "serialize body as JSON (default)")
	flagSet.StringVarLong(&printFlag, "print", 'p', "specifies what the output should contain (HBhb)")
	flagSet.BoolVarLong(&ignoreStdin, "ignore-stdin", 0, "do not attempt to read stdin")
	flagSet.StringVarLong(&timeout, "timeout", 0, "timeout, as a number of seconds or a duration string, for each request hop up to its response headers")
	flagSet.StringVarLong(&redirectMode, "redirect", 0, "redirect policy: follow (default), manual, or error")
	flagSet.StringVarLong(&authString, "auth", 'a', "username[:password] for HTTP Basic auth; password prompted if omitted")
	flagSet.BoolVarLong(&fetchOptions.InsecureSkipVerify, "verify-no", 0, "skip TLS certificate verification")
	flagSet.StringVarLong(&outputOptions.OutputFile, "output", 'o', "write the response body to this file instead of stdout")
	flagSet.BoolVarLong(&outputOptions.Download, "download", 'd', "download the response body to a file, with progress")
	flagSet.BoolVarLong(&outputOptions.Overwrite, "overwrite", 0, "overwrite the output file instead of renaming around an existing one")
	// getopt takes args[0] as the program name; args here starts after it.
	if len(args) > 0 {
		flagSet.Parse(append([]string{"fetchcli"}, args...))
	}

	if !ignoreStdin && !term.stdinIsTerminal {
		bodyOptions.ReadStdin = true
	}

	if err := parsePrintFlag(printFlag, &outputOptions, term); err != nil {
		return nil, nil, nil, err
	}

	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return nil, nil, nil, err
	}
	fetchOptions.Timeout = d

	if redirectMode != "" {
		switch redirectMode {
		case "follow", "manual", "error":
		default:
			return nil, nil, nil, errors.Errorf("--redirect must be one of follow, manual, error: %s", redirectMode)
		}
	}

	outputOptions.EnableColor = term.stdoutIsTerminal

	auth, err := parseAuthFlag(authString)
	if err != nil {
		return nil, nil, nil, err
	}

	optionSet := &OptionSet{
		BodyOptions:   bodyOptions,
		FetchOptions:  fetchOptions,
		OutputOptions: outputOptions,
		Auth:          auth,
		RedirectMode:  redirectMode,
	}
	return flagSet.Args(), flagSet, optionSet, nil
}

func parsePrintFlag(printFlag string, outputOptions *output.Options, term terminalInfo) error {
	if printFlag == "\000" {
		if term.stdoutIsTerminal {
			outputOptions.PrintResponseHeader = true
			outputOptions.PrintResponseBody = true
		} else {
			outputOptions.PrintResponseBody = true
		}
		return nil
	}

	for _, c := range printFlag {
		switch c {
		case 'H':
			outputOptions.PrintRequestHeader = true
		case 'B':
			outputOptions.PrintRequestBody = true
		case 'h':
			outputOptions.PrintResponseHeader = true
		case 'b':
			outputOptions.PrintResponseBody = true
		default:
			return errors.Errorf("invalid char in --print value (must consist of HBhb): %c", c)
		}
	}
	return nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return 0, errors.Errorf("value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}

func parseAuthFlag(authString string) (AuthOptions, error) {
	if authString == "" {
		return AuthOptions{}, nil
	}
	for i, c := range authString {
		if c == ':' {
			return AuthOptions{Enabled: true, UserName: authString[:i], Password: authString[i+1:]}, nil
		}
	}
	return AuthOptions{Enabled: true, UserName: authString}, nil
}

// PrintUsage writes flagSet's usage message to w, the way the teacher's
// FlagSet.PrintUsage did.
func PrintUsage(flagSet *getopt.Set, w io.Writer) {
	flagSet.PrintUsage(w)
}

// AskPassword interactively prompts the user on the controlling
// terminal, for -a/--auth invocations that name a user but no
// password. Platform-specific implementations live in
// ask_password_unix.go/ask_password_windows.go.
func AskPassword() (string, error) {
	return askPassword()
}
