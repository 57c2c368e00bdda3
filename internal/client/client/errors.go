package client

import (
	"errors"

	"github.com/dmitrijs2005/capgallery/internal/common"
)

var (
	ErrUnavailable      = common.ErrUnavailable
	ErrUnauthorized     = common.ErrUnauthorized
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrBadResponse      = errors.New("malformed response body")
)
