// Package pathkit implements utility routines for manipulating slash-separated
// URL paths, including the resolution of ":name" styled path templates.
//
// The package should only be used for paths separated by forward slashes,
// such as the paths in URLs. It does not deal with operating system paths.
package pathkit

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"go.llib.dev/hookit/pkg/errorkit"
)

const (
	separatorRune = '/'
	separatorChar = string(separatorRune)
)

// ErrMissingParam is returned by Subst when a path template placeholder
// has no corresponding value in the supplied parameters.
const ErrMissingParam errorkit.Error = "err-missing-path-param"

var paramRGX = regexp.MustCompile(`^:[\w[:punct:]]+$`)

// Subst resolves the ":name" styled placeholders of a path template
// with the supplied parameter values.
//
// The template may contain a base URL; it is preserved in the result.
// Every placeholder must have a value, else ErrMissingParam is returned.
func Subst(uri string, params map[string]string) (string, error) {
	var (
		baseURL, rpath = SplitBase(uri)
		parts          = []string{baseURL}
	)
	for _, part := range Split(rpath) {
		if paramRGX.MatchString(part) {
			name := strings.TrimPrefix(part, ":")
			val, ok := params[name]
			if !ok {
				return "", ErrMissingParam.F("%s", name)
			}
			part = val
		}
		parts = append(parts, part)
	}
	return Join(parts...), nil
}

// Params lists the placeholder names of a path template, in order of appearance.
func Params(uri string) []string {
	_, rpath := SplitBase(uri)
	var names []string
	for _, part := range Split(rpath) {
		if paramRGX.MatchString(part) {
			names = append(names, strings.TrimPrefix(part, ":"))
		}
	}
	return names
}

// Canonical returns the canonical form of the given path,
// keeping the trailing slash if the input had one.
func Canonical(p string) string {
	np := Clean(p)
	if np == separatorChar {
		return np
	}
	// path.Clean removes the trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == separatorRune && np != separatorChar {
		np += separatorChar
	}
	return np
}

// Clean returns the shortest path name equivalent to the given path,
// always starting with a forward slash.
func Clean(p string) string {
	if p == "" {
		return separatorChar
	}
	if p[0] != separatorRune {
		p = separatorChar + p
	}
	return path.Clean(p)
}

// Split breaks down a path into its individual parts.
func Split(p string) []string {
	p = Canonical(p)
	p = strings.TrimPrefix(p, separatorChar)
	p = strings.TrimSuffix(p, separatorChar)
	parts := strings.Split(p, separatorChar)
	if len(parts) == 1 && parts[0] == "" {
		return []string{}
	}
	return parts
}

// Join combines different parts of a path, making sure slashes are handled correctly.
// If the first part is a URL, it becomes the starting point for creating the final URL.
func Join(ps ...string) string {
	u := &url.URL{}
	if len(ps) == 0 {
		return separatorChar
	}
	if uri := ps[0]; isSchema.MatchString(uri) {
		if nu, err := url.Parse(uri); err == nil {
			u = nu
			ps = ps[1:]
		}
	}
	u = u.JoinPath(ps...)
	cleanJoin(u)
	return u.String()
}

func cleanJoin(u *url.URL) error {
	raw := u.RawPath
	if len(raw) == 0 {
		raw = u.EscapedPath()
	}
	rpath := Clean(raw)
	if rpath == raw {
		return nil
	}
	uri, err := url.ParseRequestURI(rpath)
	if err != nil {
		return err
	}
	u.Path = uri.Path
	u.RawPath = uri.RawPath
	return nil
}

var isSchema = regexp.MustCompile(`^[^:]+:`)

// SplitBase will split a given uri into a base url and a request path.
func SplitBase(uri string) (_baseURL string, _path string) {
	if !isSchema.MatchString(uri) {
		return "", uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", uri
	}
	uPath := &url.URL{
		Opaque:      u.Opaque,
		Path:        u.Path,
		RawPath:     u.RawPath,
		ForceQuery:  u.ForceQuery,
		RawQuery:    u.RawQuery,
		Fragment:    u.Fragment,
		RawFragment: u.RawFragment,
	}
	uBase := &url.URL{
		Scheme:   u.Scheme,
		User:     u.User,
		Host:     u.Host,
		OmitHost: u.OmitHost,
	}
	return uBase.String(), uPath.String()
}
