// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"
)

// TreeNodeType represents the type of node in the navigation tree
type TreeNodeType string

const (
	NodeTypeShare  TreeNodeType = "share"
	NodeTypeSchema TreeNodeType = "schema"
	NodeTypeTable  TreeNodeType = "table"
)

// TreeNode is one share, schema or table of a profile.
type TreeNode struct {
	ID       string
	NodeType TreeNodeType
	Name     string
	Table    delta_sharing.Table
	Children []string
}

// NavigationTree holds the share/schema/table hierarchy of one profile.
type NavigationTree struct {
	mu      sync.RWMutex
	nodes   map[string]*TreeNode
	rootIDs []string
}

func NewNavigationTree() *NavigationTree {
	return &NavigationTree{nodes: make(map[string]*TreeNode)}
}

// nodeID joins parts with '/'.
func nodeID(parts ...string) string {
	return strings.Join(parts, "/")
}

// Load replaces the tree. shares may name shares that have no tables.
func (nt *NavigationTree) Load(shares []string, tables []delta_sharing.Table) {
	nodes := make(map[string]*TreeNode)
	var roots []string

	shareNode := func(name string) *TreeNode {
		id := nodeID(name)
		if n, ok := nodes[id]; ok {
			return n
		}
		n := &TreeNode{ID: id, NodeType: NodeTypeShare, Name: name}
		nodes[id] = n
		roots = append(roots, id)
		return n
	}
	for _, s := range shares {
		shareNode(s)
	}

	for _, t := range tables {
		parent := shareNode(t.Share)
		schemaID := nodeID(t.Share, t.Schema)
		schema, ok := nodes[schemaID]
		if !ok {
			schema = &TreeNode{ID: schemaID, NodeType: NodeTypeSchema, Name: t.Schema}
			nodes[schemaID] = schema
			parent.Children = append(parent.Children, schemaID)
		}
		tableID := nodeID(t.Share, t.Schema, t.Name)
		if _, dup := nodes[tableID]; dup {
			continue
		}
		nodes[tableID] = &TreeNode{ID: tableID, NodeType: NodeTypeTable, Name: t.Name, Table: t}
		schema.Children = append(schema.Children, tableID)
	}

	nt.mu.Lock()
	nt.nodes, nt.rootIDs = nodes, roots
	nt.mu.Unlock()
}

// GetChildren returns the children of nodeID, or the shares for the root.
func (nt *NavigationTree) GetChildren(id widget.TreeNodeID) []widget.TreeNodeID {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	if id == "" {
		return nt.rootIDs
	}
	if n, ok := nt.nodes[id]; ok {
		return n.Children
	}
	return nil
}

func (nt *NavigationTree) IsBranch(id widget.TreeNodeID) bool {
	if id == "" {
		return true
	}
	n := nt.GetNode(id)
	return n != nil && n.NodeType != NodeTypeTable
}

func (nt *NavigationTree) GetNode(id widget.TreeNodeID) *TreeNode {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return nt.nodes[id]
}

// Widget returns a fyne tree over nt. onTable runs when a table is picked.
func (nt *NavigationTree) Widget(onTable func(delta_sharing.Table)) *widget.Tree {
	tree := widget.NewTree(
		nt.GetChildren,
		nt.IsBranch,
		func(bool) fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FolderIcon()), widget.NewLabel("template"))
		},
		func(id widget.TreeNodeID, _ bool, o fyne.CanvasObject) {
			n := nt.GetNode(id)
			if n == nil {
				return
			}
			box := o.(*fyne.Container)
			icon := box.Objects[0].(*widget.Icon)
			switch n.NodeType {
			case NodeTypeShare:
				icon.SetResource(theme.FolderOpenIcon())
			case NodeTypeSchema:
				icon.SetResource(theme.FolderIcon())
			default:
				icon.SetResource(theme.DocumentIcon())
			}
			box.Objects[1].(*widget.Label).SetText(n.Name)
		},
	)
	tree.OnSelected = func(id widget.TreeNodeID) {
		if n := nt.GetNode(id); n != nil && n.NodeType == NodeTypeTable {
			onTable(n.Table)
		}
		tree.Unselect(id)
	}
	return tree
}
