// Package fetchcli is the command-line demo of the fetch package: it
// turns httpie-style request items into a fetch.Fetch call and prints
// the result, the way the teacher's Main() turned them into an
// *http.Request.
package fetchcli

import (
	"bufio"
	"encoding/base64"
	"os"

	"github.com/nojima/go-fetch/fetch"
	"github.com/nojima/go-fetch/flags"
	"github.com/nojima/go-fetch/input"
	"github.com/nojima/go-fetch/output"
	"github.com/pkg/errors"
)

// Main parses os.Args, performs the request, and prints the response.
// It returns the error the caller should report and exit non-zero for;
// a *input.UsageError has already had its usage message printed.
func Main() error {
	return Run(os.Args[1:])
}

// Run is Main with args injected, for testability.
func Run(args []string) error {
	positional, flagSet, optionSet, err := flags.Parse(args)
	if err != nil {
		return err
	}

	in, err := input.ParseArgs(positional, os.Stdin, &optionSet.BodyOptions)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		flags.PrintUsage(flagSet, os.Stderr)
		return err
	}
	if err != nil {
		return err
	}

	url, reqInit, err := input.ToRequestInit(in)
	if err != nil {
		return err
	}
	reqInit.Redirect = optionSet.RedirectMode

	if err := applyAuth(reqInit, optionSet.Auth); err != nil {
		return err
	}

	fetcher := fetch.New(optionSet.FetchOptions)
	resp, err := fetcher.Fetch(url, reqInit)
	if err != nil {
		return err
	}
	defer func() {
		if resp.Body != nil {
			resp.Body.Close()
		}
	}()

	if optionSet.OutputOptions.Download || optionSet.OutputOptions.OutputFile != "" {
		return downloadToFile(resp, &optionSet.OutputOptions)
	}

	return printResponse(resp, reqInit, url, &optionSet.OutputOptions)
}

// applyAuth fills in the Authorization header for -a/--auth, prompting
// on the controlling terminal for the password when one wasn't given
// on the command line.
func applyAuth(reqInit *fetch.RequestInit, auth flags.AuthOptions) error {
	if !auth.Enabled {
		return nil
	}

	password := auth.Password
	if password == "" {
		p, err := flags.AskPassword()
		if err != nil {
			return errors.Wrap(err, "reading password")
		}
		password = p
	}

	headers, err := fetch.HeadersFrom(reqInit.Headers)
	if err != nil {
		return err
	}
	token := base64.StdEncoding.EncodeToString([]byte(auth.UserName + ":" + password))
	headers.Set("Authorization", "Basic "+token)
	reqInit.Headers = headers
	return nil
}

func printResponse(resp *fetch.Response, reqInit *fetch.RequestInit, url string, opts *output.Options) error {
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	var printer output.Printer
	if opts.EnableColor {
		printer = output.NewPrettyPrinter(output.PrettyPrinterConfig{Writer: writer, EnableColor: true})
	} else {
		printer = output.NewPlainPrinter(writer)
	}

	if opts.PrintRequestHeader {
		req, err := buildDisplayRequest(reqInit.Method, url)
		if err != nil {
			return err
		}
		if err := printer.PrintRequestLine(req); err != nil {
			return err
		}
	}

	if opts.PrintResponseHeader {
		if err := printer.PrintStatusLine(httpProto, resp.Status, resp.StatusCode); err != nil {
			return err
		}
		if err := printer.PrintHeader(toHTTPHeader(resp.Headers)); err != nil {
			return err
		}
	}

	if opts.PrintResponseBody && resp.Body != nil {
		writer.Flush()
		return printer.PrintBody(resp.Body, resp.Headers.Get("Content-Type"))
	}
	return nil
}

func downloadToFile(resp *fetch.Response, opts *output.Options) error {
	if resp.Body == nil {
		return nil
	}
	destURL, err := parseDownloadURL(resp.URL)
	if err != nil {
		return err
	}
	fw := output.NewFileWriter(destURL, opts)
	contentLength := int64(-1)
	if cl := resp.Headers.Get("Content-Length"); cl != "" {
		if n, err := parseContentLength(cl); err == nil {
			contentLength = n
		}
	}
	return fw.Download(resp.Body, contentLength)
}

const httpProto = "HTTP/1.1"
