package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"market-dashboard/src/grpc_control"

	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

// startServers launches the HTTP surface and the gRPC control plane.
// The returned function stops both.
func startServers(app *application) func() {
	// 1. Dashboard HTTP + websocket server
	go func() {
		if err := app.Server.Start(); err != nil {
			app.Logger.Critical("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	var grpcServer *grpc.Server
	if app.Config.GrpcPort > 0 {
		addr := fmt.Sprintf("%s:%d", app.Config.GrpcHost, app.Config.GrpcPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			app.Logger.Error("Failed to listen for gRPC on %s: %v", addr, err)
		} else {
			grpcServer = grpc.NewServer()
			grpc_control.RegisterDashboardControlServer(grpcServer, app.Control)

			go func() {
				app.Logger.Info("Starting gRPC Control Server on %s", addr)
				if err := grpcServer.Serve(lis); err != nil {
					app.Logger.Error("gRPC server stopped: %v", err)
				}
			}()
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			app.Logger.Warning("HTTP shutdown: %v", err)
		}
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
	}
}
