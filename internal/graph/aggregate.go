package graph

// Aggregate computes, for each name in names, every node's aggregated
// value as the sum of its own value and the aggregated values of its
// children, via a DFS over the forest rooted at Graph.Roots. withSuffix
// selects whether the result is stored back at name or at "<name>_SUM"
// (LOC aggregation uses no suffix; diagnostic counters use the suffix so
// self and aggregated counts can be told apart). asInt selects the int or
// float attribute store for both the read of the self-value and the write
// of the result.
func (g *Graph) Aggregate(names []string, withSuffix bool, asInt bool) {
	for _, root := range g.Roots() {
		aggregateSubtree(root, names, withSuffix, asInt)
	}
}

// aggregateSubtree returns the aggregated value of each name for the
// subtree rooted at n, after writing each one to n's attributes.
func aggregateSubtree(n *Node, names []string, withSuffix bool, asInt bool) map[string]float64 {
	childTotals := make(map[string]float64, len(names))
	for _, c := range n.Children() {
		sub := aggregateSubtree(c, names, withSuffix, asInt)
		for _, name := range names {
			childTotals[name] += sub[name]
		}
	}

	totals := make(map[string]float64, len(names))
	for _, name := range names {
		self := selfValue(n, name, asInt)
		total := self + childTotals[name]
		totals[name] = total

		storeName := name
		if withSuffix {
			storeName += "_SUM"
		}
		if asInt {
			n.SetInt(storeName, int64(total))
		} else {
			n.SetFloat(storeName, total)
		}
	}
	return totals
}

func selfValue(n *Node, name string, asInt bool) float64 {
	if asInt {
		v, _ := n.GetInt(name)
		return float64(v)
	}
	v, _ := n.GetFloat(name)
	return v
}
