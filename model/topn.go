package model

import (
	"container/heap"
	"sort"
)

// sizedEntry is an `Entry` with its arrival order, which breaks size ties
type sizedEntry struct {
	Entry
	seq uint64
}

// sizedEntries is a min heap on size, the earliest arrival is the smaller of two equal sizes
type sizedEntries []*sizedEntry

func (entries sizedEntries) Len() int { return len(entries) }
func (entries sizedEntries) Less(i, j int) bool {
	if entries[i].Size.Value != entries[j].Size.Value {
		return entries[i].Size.Value < entries[j].Size.Value
	}
	return entries[i].seq < entries[j].seq
}
func (entries sizedEntries) Swap(i, j int) { entries[i], entries[j] = entries[j], entries[i] }

// Push is for heap interface
func (entries *sizedEntries) Push(x interface{}) {
	if entry, ok := x.(*sizedEntry); ok {
		*entries = append(*entries, entry)
	}
}

// Pop is for heap interface
func (entries *sizedEntries) Pop() interface{} {
	old := *entries
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*entries = old[0 : n-1]
	return item
}

// TopN keeps the `capacity` largest entries offered so far, in O(capacity) space
type TopN struct {
	capacity int
	entries  sizedEntries
	seq      uint64
}

// NewTopN initializes a `TopN`, a capacity of 0 or less keeps everything
func NewTopN(capacity int) *TopN {
	initial := capacity
	if initial <= 0 {
		initial = 16
	}
	return &TopN{
		capacity: capacity,
		entries:  make(sizedEntries, 0, initial+1),
	}
}

// Offer pushes the entry and evicts the current minimum once over capacity
// entries whose size probe failed are never kept, it returns whether the entry is still held
func (topN *TopN) Offer(entry Entry) bool {
	if !entry.Size.OK {
		return false
	}
	topN.seq++
	pushed := &sizedEntry{Entry: entry, seq: topN.seq}
	heap.Push(&topN.entries, pushed)
	if topN.capacity > 0 && topN.entries.Len() > topN.capacity {
		if evicted, ok := heap.Pop(&topN.entries).(*sizedEntry); ok && evicted == pushed {
			return false
		}
	}
	return true
}

// Len is the number of entries held
func (topN *TopN) Len() int {
	return topN.entries.Len()
}

// Min is the smallest entry held, the next one to go
func (topN *TopN) Min() (Entry, bool) {
	if topN.entries.Len() == 0 {
		return Entry{}, false
	}
	return topN.entries[0].Entry, true
}

// Sorted is every entry held, largest first
func (topN *TopN) Sorted() []Entry {
	sorted := make(sizedEntries, len(topN.entries))
	copy(sorted, topN.entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Size.Value != sorted[j].Size.Value {
			return sorted[i].Size.Value > sorted[j].Size.Value
		}
		return sorted[i].seq < sorted[j].seq
	})
	out := make([]Entry, len(sorted))
	for i, entry := range sorted {
		out[i] = entry.Entry
	}
	return out
}

// TopTables is one `TopN` per key type, types listed in the order they were first seen
type TopTables struct {
	capacity int
	tables   map[KeyType]*TopN
	order    []KeyType
}

// NewTopTables initializes empty `TopTables`
func NewTopTables(capacity int) *TopTables {
	return &TopTables{
		capacity: capacity,
		tables:   map[KeyType]*TopN{},
		order:    []KeyType{},
	}
}

// Offer routes the entry to the table of its type, failed probes never open a table
func (topTables *TopTables) Offer(entry Entry) bool {
	if !entry.Size.OK {
		return false
	}
	table, ok := topTables.tables[entry.Type]
	if !ok {
		table = NewTopN(topTables.capacity)
		topTables.tables[entry.Type] = table
		topTables.order = append(topTables.order, entry.Type)
	}
	return table.Offer(entry)
}

// Types lists the key types seen, in first seen order
func (topTables *TopTables) Types() []KeyType {
	types := make([]KeyType, len(topTables.order))
	copy(types, topTables.order)
	return types
}

// Sorted is the largest entries of one type, largest first
func (topTables *TopTables) Sorted(keyType KeyType) []Entry {
	if table, ok := topTables.tables[keyType]; ok {
		return table.Sorted()
	}
	return []Entry{}
}
