package importer

import (
	"path/filepath"
	"strings"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
)

// runJavaCorrection implements spec step 3: Java's directory layout encodes
// package membership (org/example/foo/Bar.java -> org.example.foo), which
// the generic directory-chain node phase reifies as nested Directory nodes
// rather than the dotted Package nodes a Java-aware graph needs. For a
// java language handler, this synthesises one Package node per distinct
// directory-relative path seen among the discovered files and reparents
// each file's top-level Class/Interface/Enum/Struct nodes under it, leaving the
// Directory chain itself untouched (still useful as the filesystem view).
func (imp *Importer) runJavaCorrection(g *graph.Graph, files []*fileRecord) {
	if imp.h.Language() != "java" {
		return
	}
	if !imp.cfg.nodeKindEnabled("Package") {
		return
	}

	packages := make(map[string]*graph.Node)

	for _, rec := range files {
		if rec.fileNode == nil {
			continue
		}
		dir := filepath.Dir(rec.rel)
		if dir == "." {
			continue
		}
		pkgName := strings.ReplaceAll(dir, "/", ".")

		pkgNode, ok := packages[pkgName]
		if !ok {
			pkgNode = graph.NewNode("Package")
			pkgNode.SetSourceName(pkgName)
			if err := pkgNode.SetID("Package." + pkgName); err != nil {
				continue
			}
			if err := g.AddNode(pkgNode); err != nil {
				continue
			}
			packages[pkgName] = pkgNode
		}

		for _, child := range rec.fileNode.Children() {
			switch child.Type() {
			case "Class", "Interface", "Enum", "Struct":
				if err := g.Reparent(child, pkgNode); err != nil {
					continue
				}
				pkgNode.IncrementInt("Metric.Number.Methods", countMethods(child))
			}
		}
	}
}

// countMethods counts the Method- and Constructor-kind children of a type node, the value
// the synthesised Package node accumulates as Metric.Number.Methods.
func countMethods(typeNode *graph.Node) int64 {
	var n int64
	for _, c := range typeNode.Children() {
		if c.Type() == "Method" || c.Type() == "Constructor" {
			n++
		}
	}
	return n
}
