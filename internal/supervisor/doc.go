// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package supervisor runs FitLens's long-lived components under a suture/v4
supervision tree.

	fitlens (root)
	├── data-layer        embedded NATS server, Badger cache GC
	├── messaging-layer   event tap
	└── api-layer         HTTP server, periodic model trainer

Every child is a suture.Service: Serve(ctx) blocks until ctx is canceled and
returns an error to request a restart. Restarts back off after
FailureThreshold failures decaying at FailureDecay per second.

Supervisor events are logged through sutureslog into the zerolog pipeline:

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(natsServer)
	tree.AddAPIService(services.NewHTTPService(srv, 10*time.Second))
	err := tree.Serve(ctx)

Service adapters live in the services subpackage.
*/
package supervisor
