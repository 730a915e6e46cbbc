package service

import "errors"

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("splitmerge: client is closed")

// ErrCatalogDisabled indicates an operation needs the split catalog but it is turned off.
var ErrCatalogDisabled = errors.New("splitmerge: catalog is disabled")
