package model

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	internalIconPrefix = "internal_icon_"
	// InternalIconCount is the number of bundled stock avatars.
	InternalIconCount = 12
	defaultPhotoMIME  = "image/jpeg"
)

type PhotoKind int

const (
	PhotoNone PhotoKind = iota
	PhotoInternalIcon
	PhotoDataURI
	PhotoBase64
)

func (k PhotoKind) String() string {
	switch k {
	case PhotoInternalIcon:
		return "internal icon"
	case PhotoDataURI:
		return "data URI"
	case PhotoBase64:
		return "base64"
	default:
		return "none"
	}
}

// Photo is the classified form of a user's photo string.
type Photo struct {
	Kind      PhotoKind
	IconIndex int
	Raw       string
}

func ParsePhoto(raw string) (Photo, error) {
	switch {
	case raw == "":
		return Photo{Kind: PhotoNone}, nil
	case strings.HasPrefix(raw, internalIconPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(raw, internalIconPrefix))
		if err != nil {
			return Photo{}, fmt.Errorf("invalid internal icon %q: %w", raw, err)
		}
		if index < 0 || index >= InternalIconCount {
			return Photo{}, fmt.Errorf("internal icon index %d out of range [0, %d)", index, InternalIconCount)
		}
		return Photo{Kind: PhotoInternalIcon, IconIndex: index, Raw: raw}, nil
	case strings.HasPrefix(raw, "data:"):
		return Photo{Kind: PhotoDataURI, Raw: raw}, nil
	default:
		return Photo{Kind: PhotoBase64, Raw: raw}, nil
	}
}

// InternalIcon returns the photo value that references a bundled avatar.
func InternalIcon(index int) string {
	return internalIconPrefix + strconv.Itoa(index)
}

// DataURI renders base64 photos as a data URI using the sniffed content
// type. JPEG is assumed when the payload cannot be decoded or sniffed.
func (p Photo) DataURI() string {
	switch p.Kind {
	case PhotoDataURI:
		return p.Raw
	case PhotoBase64:
		return "data:" + p.MIMEType() + ";base64," + p.Raw
	default:
		return ""
	}
}

func (p Photo) MIMEType() string {
	switch p.Kind {
	case PhotoDataURI:
		header, _, _ := strings.Cut(strings.TrimPrefix(p.Raw, "data:"), ",")
		mediaType, _, _ := strings.Cut(header, ";")
		if mediaType == "" {
			return defaultPhotoMIME
		}
		return mediaType
	case PhotoBase64:
		decoded, err := base64.StdEncoding.DecodeString(p.Raw)
		if err != nil {
			return defaultPhotoMIME
		}
		mtype := mimetype.Detect(decoded)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return defaultPhotoMIME
		}
		return mtype.String()
	default:
		return ""
	}
}
