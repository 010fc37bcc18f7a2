// Package factory creates the collaborators of a msgcrypt client from
// configuration.
//
// The factory hides the choice between the HTTP gateway and an in-process
// memory transport, so commands and tests build clients the same way in
// either mode.
//
// # Configuration
//
// Defaults target the public gateway with a 10 second timeout. Environment
// variables override them:
//   - MSGCRYPT_MODE: "gateway" or "memory"
//   - MSGCRYPT_BASE_URL: gateway API root
//   - MSGCRYPT_FROM: 8 character API identity
//   - MSGCRYPT_SECRET: API secret
//   - MSGCRYPT_TIMEOUT: integer milliseconds for every request
//
// Invalid values are logged and ignored.
//
// # Usage
//
//	f := factory.NewTransportFactory()
//	client, err := f.CreateClient()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// In memory mode every transport created by one factory shares a single
// store, so an upload made through one is visible to the others:
//
//	f.SwitchMode(interfaces.ModeMemory)
//	blobs, _ := f.CreateBlobTransport()
package factory
