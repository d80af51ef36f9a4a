package input

import (
	"encoding/json"
	"io/ioutil"
	"net/url"

	"github.com/nojima/go-fetch/fetch"
	"github.com/pkg/errors"
)

// ToRequestInit turns a parsed Input into the URL string and RequestInit
// that fetch.Fetch expects, the way exchange.BuildHTTPRequest used to
// turn it into an *http.Request. Unlike that old function, a FormBody
// with file fields is sent as real streamed multipart/form-data instead
// of silently dropping the files.
func ToRequestInit(in *Input) (string, *fetch.RequestInit, error) {
	u, err := buildURL(in)
	if err != nil {
		return "", nil, err
	}

	headers, err := buildHeaders(in)
	if err != nil {
		return "", nil, err
	}

	bodyValue, contentType, err := buildBody(in)
	if err != nil {
		return "", nil, err
	}
	if contentType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentType)
	}
	if headers.Get("User-Agent") == "" {
		headers.Set("User-Agent", "go-fetch/0.0.0")
	}

	return u.String(), &fetch.RequestInit{
		Method:  string(in.Method),
		Headers: headers,
		Body:    bodyValue,
	}, nil
}

func buildURL(in *Input) (*url.URL, error) {
	q, err := url.ParseQuery(in.URL.RawQuery)
	if err != nil {
		return nil, errors.Wrap(err, "parsing query string")
	}
	for _, field := range in.Parameters {
		value, err := resolveFieldValue(field)
		if err != nil {
			return nil, err
		}
		q.Add(field.Name, value)
	}

	u := *in.URL
	u.RawQuery = q.Encode()
	return &u, nil
}

func buildHeaders(in *Input) (*fetch.Headers, error) {
	headers := fetch.NewHeaders()
	for _, field := range in.Header.Fields {
		value, err := resolveFieldValue(field)
		if err != nil {
			return nil, err
		}
		headers.Append(field.Name, value)
	}
	return headers, nil
}

func buildBody(in *Input) (interface{}, string, error) {
	switch in.Body.BodyType {
	case EmptyBody:
		return nil, "", nil
	case JSONBody:
		return buildJSONBody(in)
	case FormBody:
		return buildFormBody(in)
	case RawBody:
		return string(in.Body.Raw), "application/json", nil
	default:
		return nil, "", errors.Errorf("unknown body type: %v", in.Body.BodyType)
	}
}

func buildJSONBody(in *Input) (interface{}, string, error) {
	obj := map[string]interface{}{}
	for _, field := range in.Body.Fields {
		value, err := resolveFieldValue(field)
		if err != nil {
			return nil, "", err
		}
		obj[field.Name] = value
	}
	for _, field := range in.Body.RawJSONFields {
		value, err := resolveFieldValue(field)
		if err != nil {
			return nil, "", err
		}
		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, "", errors.Wrapf(err, "parsing JSON value of '%s'", field.Name)
		}
		obj[field.Name] = v
	}
	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, "", errors.Wrap(err, "marshaling JSON of HTTP body")
	}
	return string(encoded), "application/json", nil
}

// buildFormBody sends a FormBody as multipart/form-data (streamed by the
// body extractor) when it carries file fields, and as a plain
// url-encoded form otherwise.
func buildFormBody(in *Input) (interface{}, string, error) {
	if len(in.Body.Files) == 0 {
		params := fetch.NewURLSearchParams()
		for _, field := range in.Body.Fields {
			value, err := resolveFieldValue(field)
			if err != nil {
				return nil, "", err
			}
			params.Append(field.Name, value)
		}
		return params, "", nil
	}

	form := fetch.NewFormData()
	for _, field := range in.Body.Fields {
		value, err := resolveFieldValue(field)
		if err != nil {
			return nil, "", err
		}
		form.Append(field.Name, value)
	}
	for _, field := range in.Body.Files {
		data, err := ioutil.ReadFile(field.Value)
		if err != nil {
			return nil, "", errors.Wrapf(err, "reading file field '%s'", field.Name)
		}
		form.AppendFile(field.Name, fetch.NewBlob(data, ""))
	}
	return form, "", nil
}

func resolveFieldValue(field Field) (string, error) {
	if field.IsFile {
		data, err := ioutil.ReadFile(field.Value)
		if err != nil {
			return "", errors.Wrapf(err, "reading field value of '%s'", field.Name)
		}
		return string(data), nil
	}
	return field.Value, nil
}
