// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor provides process supervision for Marquee using suture v4.

Long-running services are arranged in a two-layer tree:

	RootSupervisor ("marquee")
	├── ModelSupervisor ("model-layer")
	│   └── RebuildService (if RECOMMEND_REBUILD_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer restarts its own services. A rebuild that keeps failing backs
off inside the model layer while the API layer keeps answering from the
last published generation.

# Failure Handling

Failures are counted per supervisor and decay over FailureDecay seconds.
Once FailureThreshold is exceeded the supervisor waits FailureBackoff before
restarting anything. Supervisor events are logged through sutureslog to the
slog bridge from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddModelService(rebuildSvc)
	tree.AddAPIService(httpSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

The service wrappers live in the services subpackage.
*/
package supervisor
