// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/rgbpng/pkg/api" //nolint:depguard
	"github.com/ssargent/rgbpng/pkg/decoder"
	"github.com/ssargent/rgbpng/pkg/storage"
)

// StoreOpener opens the image store in a directory
type StoreOpener func(dir string) (*storage.ImageStore, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	storeOpener   StoreOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		storeOpener:   storage.Open,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenStore opens the image store in dir
func (c *Container) OpenStore(dir string) (*storage.ImageStore, error) {
	return c.storeOpener(dir)
}

// SetStoreOpener allows overriding how stores are opened (for testing)
func (c *Container) SetStoreOpener(opener StoreOpener) {
	c.storeOpener = opener
}

// NewDecoder returns a decoder limited to maxImageBytes of pixel data
func (c *Container) NewDecoder(maxImageBytes int64) *decoder.Decoder {
	return decoder.New(decoder.WithMaxImageBytes(maxImageBytes))
}
