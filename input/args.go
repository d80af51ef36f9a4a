// Package input parses httpie-style command-line request items
// (METHOD URL key=value key:=rawjson key:header key==param key@file)
// into an Input, which input/convert.go then turns into the URL,
// headers, and request body value fetch.Fetch expects.
package input

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reMethod          = regexp.MustCompile(`^[a-zA-Z]+$`)
	reHeaderFieldName = regexp.MustCompile("^[-!#$%&'*+.^_|~a-zA-Z0-9]+$")
	reScheme          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)
	emptyMethod       = Method("")
)

// requestItemKind is httpie-style request-item grammar's own
// classification, one layer below body.Extract's variant
// classification: it says which part of the eventual Input a
// "name<op>value" argument feeds (a header, a query parameter, or one
// of the three body inputs ToRequestInit builds in
// input/convert.go — a JSON field, a raw JSON field, or a form file).
type requestItemKind int

const (
	kindUnknown requestItemKind = iota
	kindHeaderField
	kindQueryParam
	kindBodyField
	kindRawJSONField
	kindFormFile
)

type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

type state struct {
	preferredBodyType BodyType
	stdinConsumed     bool
}

// ParseArgs parses a full positional argument list ([METHOD] URL
// REQUEST_ITEM...) into an Input. REQUEST_ITEMs accumulate into
// in.Body, in.Header, and in.Parameters per classifyItem; the method is
// read from args when given and guessed from body presence otherwise.
func ParseArgs(args []string, stdin io.Reader, options *Options) (*Input, error) {
	var argMethod string
	var argURL string
	var argItems []string
	switch len(args) {
	case 0:
		return nil, newUsageError("URL is required")
	case 1:
		argURL = args[0]
	default:
		if reMethod.MatchString(args[0]) {
			argMethod = args[0]
			argURL = args[1]
			argItems = args[2:]
		} else {
			argURL = args[0]
			argItems = args[1:]
		}
	}

	in := Input{}
	state := state{}

	u, err := parseURL(argURL)
	if err != nil {
		return nil, err
	}
	in.URL = u

	state.preferredBodyType, err = determinePreferredBodyType(options)
	if err != nil {
		return nil, err
	}

	for _, arg := range argItems {
		if err := parseItem(arg, stdin, &state, &in); err != nil {
			return nil, err
		}
	}
	if options.ReadStdin && !state.stdinConsumed {
		if in.Body.BodyType != EmptyBody {
			return nil, errors.New("request body (from stdin) and request item (key=value) cannot be mixed")
		}
		in.Body.BodyType = RawBody
		in.Body.Raw, err = ioutil.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		state.stdinConsumed = true
	}

	if argMethod != "" {
		method, err := parseMethod(argMethod)
		if err != nil {
			return nil, err
		}
		in.Method = method
	} else {
		in.Method = guessMethod(&in)
	}

	return &in, nil
}

func determinePreferredBodyType(options *Options) (BodyType, error) {
	if options.JSON && options.Form {
		return EmptyBody, errors.New("You cannot specify both of --json and --form")
	}
	if options.Form {
		return FormBody, nil
	} else {
		return JSONBody, nil
	}
}

func parseMethod(s string) (Method, error) {
	if !reMethod.MatchString(s) {
		return emptyMethod, errors.Errorf("METHOD must consist of alphabets: %s", s)
	}

	method := Method(strings.ToUpper(s))
	return method, nil
}

func guessMethod(in *Input) Method {
	if in.Body.BodyType == EmptyBody {
		return Method("GET")
	} else {
		return Method("POST")
	}
}

func parseURL(s string) (*url.URL, error) {
	defaultScheme := "http"
	defaultHost := "localhost"

	// ex) :8080/hello or /hello
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "/") {
		s = defaultHost + s
	}

	// ex) example.com/hello
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, newUsageError("Invalid URL: " + s)
	}
	u.Host = strings.TrimSuffix(u.Host, ":")
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// parseItem classifies one "name<op>value" CLI argument and files it
// into the Input field that ToRequestInit (input/convert.go) will later
// read to build the fetch request body: body fields and
// raw JSON fields become a JSON object or a FormData/URLSearchParams
// entry, form files become a FormData file entry.
func parseItem(s string, stdin io.Reader, state *state, in *Input) error {
	kind, name, value := classifyItem(s)
	switch kind {
	case kindBodyField:
		in.Body.BodyType = state.preferredBodyType
		field, err := readFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		in.Body.Fields = append(in.Body.Fields, field)
	case kindRawJSONField:
		if state.preferredBodyType != JSONBody {
			return errors.New("raw JSON field item cannot be used in non-JSON body")
		}
		in.Body.BodyType = JSONBody
		field, err := readFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		if !json.Valid([]byte(field.Value)) {
			return errors.Errorf("invalid JSON at '%s': %s", name, field.Value)
		}
		in.Body.RawJSONFields = append(in.Body.RawJSONFields, field)
	case kindHeaderField:
		if !isValidHeaderFieldName(name) {
			return errors.Errorf("invalid header field name: %s", name)
		}
		field, err := readFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		in.Header.Fields = append(in.Header.Fields, field)
	case kindQueryParam:
		field, err := readFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		in.Parameters = append(in.Parameters, field)
	case kindFormFile:
		if state.preferredBodyType != FormBody {
			return errors.New("form file field item cannot be used in non-form body (perhaps you meant --form?)")
		}
		in.Body.BodyType = FormBody
		field, err := readFieldValue(name, "@"+value, stdin, state)
		if err != nil {
			return err
		}
		in.Body.Files = append(in.Body.Files, field)
	default:
		return errors.Errorf("unknown request item: %s", s)
	}
	return nil
}

// classifyItem finds the first grammar operator (:=, :, ==, =, @) in s
// and splits it into a requestItemKind plus the name/value either side.
func classifyItem(s string) (requestItemKind, string, string) {
	for i, c := range s {
		switch c {
		case ':':
			if i+1 < len(s) && s[i+1] == '=' {
				return kindRawJSONField, s[:i], s[i+2:]
			} else {
				return kindHeaderField, s[:i], s[i+1:]
			}
		case '=':
			if i+1 < len(s) && s[i+1] == '=' {
				return kindQueryParam, s[:i], s[i+2:]
			} else {
				return kindBodyField, s[:i], s[i+1:]
			}
		case '@':
			return kindFormFile, s[:i], s[i+1:]
		}
	}
	return kindUnknown, "", ""
}

func isValidHeaderFieldName(s string) bool {
	return reHeaderFieldName.MatchString(s)
}

// readFieldValue resolves a field's raw value, reading from a file or
// stdin when it carries an '@' prefix; this is the CLI-argument-level
// indirection whose file contents later become a request body value
// (a fetch.Blob for form files), not the body package's own Blob type.
func readFieldValue(name, value string, stdin io.Reader, state *state) (Field, error) {
	// TODO: handle escaped "@"
	if strings.HasPrefix(value, "@") {
		if value[1:] == "-" {
			b, err := ioutil.ReadAll(stdin)
			if err != nil {
				return Field{}, errors.Wrapf(err, "reading stdin for '%s'", name)
			}
			state.stdinConsumed = true
			return Field{Name: name, Value: string(b), IsFile: false}, nil
		} else {
			return Field{Name: name, Value: value[1:], IsFile: true}, nil
		}
	} else {
		return Field{Name: name, Value: value, IsFile: false}, nil
	}
}
