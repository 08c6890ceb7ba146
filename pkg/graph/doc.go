// Package graph provides the snapshot types for concept graphs and their JSON
// serialization.
//
// This package defines the canonical wire format shared by the layout engine,
// the network store, the layout cache, the HTTP API and the CLI. The format
// is the node/edge shape used by the canvas front end, so a graph exported
// from the browser can be laid out by the CLI and loaded back unchanged.
//
// # Core Types
//
//   - [Graph]: ordered nodes plus edges; the first node is the root
//   - [Node]: id, canvas [Position], and the opaque [WordData] payload
//   - [Edge]: id, source and target ids, optional relation label
//
// The layout engine only reads ids, positions and edge endpoints. Payloads
// pass through untouched.
//
// # Serialization
//
//	{
//	  "nodes": [{"id": "a", "position": {"x": 400, "y": 300}, "data": {"word": "rose"}}],
//	  "edges": [{"id": "a-b", "source": "a", "target": "b", "data": {"label": "blooms into"}}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("network.json")  // File → Graph
//	graph.WriteGraphFile(g, "output.json")        // Graph → File
//	data, _ := graph.MarshalGraph(g)              // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)       // []byte → Graph
//
// # Concurrency
//
// Graph values are plain data. [Graph.Clone] returns a deep copy that can be
// handed to another goroutine.
package graph
