package ecp

import "strings"

// LaunchOption adds a deep link parameter to Launch
type LaunchOption func(*launchParams)

type launchParams struct {
	contentID *string
	mediaType *MediaType
}

// WithContentID deep links into content inside the launched app
func WithContentID(contentID string) LaunchOption {
	return func(p *launchParams) {
		p.contentID = &contentID
	}
}

// WithMediaType qualifies the deep link; must be one of SupportedMediaTypes
func WithMediaType(mediaType MediaType) LaunchOption {
	return func(p *launchParams) {
		p.mediaType = &mediaType
	}
}

type queryParam struct {
	key   string
	value string
}

// launchQuery keeps parameters in append order; the first is introduced with '?' and the rest with '&'
type launchQuery []queryParam

func (q *launchQuery) add(key, value string) {
	*q = append(*q, queryParam{key: key, value: value})
}

func (q launchQuery) encode() string {
	var b strings.Builder
	for i, param := range q {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(param.key)
		b.WriteByte('=')
		b.WriteString(param.value)
	}
	return b.String()
}

// LaunchCommand builds the path segment for a launch request, e.g. "837?contentID=123&MediaType=movie".
// Options are validated before anything is sent.
func LaunchCommand(appID string, options ...LaunchOption) (string, error) {
	var params launchParams
	for _, option := range options {
		option(&params)
	}

	var query launchQuery
	if params.contentID != nil {
		query.add("contentID", encodeURIComponent(*params.contentID))
	}
	if params.mediaType != nil {
		if !params.mediaType.Valid() {
			return "", invalidArgument("invalid deep link media type %q", string(*params.mediaType))
		}
		query.add("MediaType", string(*params.mediaType))
	}

	return appID + query.encode(), nil
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0F])
	}
	return b.String()
}

func isUnreserved(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	switch ch {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
