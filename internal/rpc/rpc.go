// Package rpc provides Unix socket IPC between a running hub and the nodes CLI.
package rpc

import (
	"fmt"
	"net"
	netrpc "net/rpc"
	"os"

	"github.com/rs/zerolog"

	"rssimon/internal/store"
)

// Service is the RPC service exposed by the hub.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

// ListNodesArgs is the request for ListNodes.
type ListNodesArgs struct {
	ActiveOnly bool
}

// ListNodesReply is the response for ListNodes.
type ListNodesReply struct {
	Nodes []store.NodeRecord
}

// ListNodes returns the node roster, optionally restricted to active nodes.
func (s *Service) ListNodes(args *ListNodesArgs, reply *ListNodesReply) error {
	var (
		nodes []store.NodeRecord
		err   error
	)
	if args.ActiveOnly {
		nodes, err = s.store.GetActive()
	} else {
		nodes, err = s.store.GetAll()
	}
	if err != nil {
		return fmt.Errorf("fetching nodes: %w", err)
	}
	reply.Nodes = nodes
	return nil
}

// StartServer starts the Unix socket RPC server.
func StartServer(socketPath string, db *store.Store, log zerolog.Logger) error {
	service := &Service{store: db, log: log}

	server := netrpc.NewServer()
	if err := server.Register(service); err != nil {
		return fmt.Errorf("registering RPC service: %w", err)
	}

	// Remove existing socket file if present
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", socketPath, err)
	}

	// Set socket permissions
	if err := os.Chmod(socketPath, 0660); err != nil {
		log.Warn().Err(err).Msg("Failed to set socket permissions")
	}

	log.Info().Str("socket", socketPath).Msg("RPC server started")

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("RPC accept error")
				continue
			}
			go server.ServeConn(conn)
		}
	}()

	return nil
}

// Client is a client for the rssimon hub RPC service.
type Client struct {
	client *netrpc.Client
}

// NewClient dials the Unix socket and returns an RPC client.
func NewClient(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to RPC socket %s: %w", socketPath, err)
	}
	return &Client{client: netrpc.NewClient(conn)}, nil
}

// Close closes the RPC client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// ListNodes fetches the roster from the hub.
func (c *Client) ListNodes(activeOnly bool) ([]store.NodeRecord, error) {
	args := &ListNodesArgs{ActiveOnly: activeOnly}
	reply := &ListNodesReply{}
	if err := c.client.Call("Service.ListNodes", args, reply); err != nil {
		return nil, err
	}
	return reply.Nodes, nil
}
