package session

import (
	"fmt"
	"sync"

	"github.com/cmespinar/docrename/internal/pdfdoc"
)

// RasterKey identifies one rendered page variant within a session.
type RasterKey struct {
	Doc  int
	Page int
	DPI  int
}

func (k RasterKey) String() string {
	return fmt.Sprintf("%d/%d@%d", k.Doc, k.Page, k.DPI)
}

// rasterCache is a small LRU over rendered pages. Rendering is the most
// expensive operation in a session, and the UI re-requests the same page
// every time a field value changes, so even a handful of slots pays off.
type rasterCache struct {
	mutex    sync.Mutex
	capacity int
	items    map[RasterKey]*rasterNode
	head     *rasterNode
	tail     *rasterNode
}

type rasterNode struct {
	key  RasterKey
	page *pdfdoc.RenderedPage
	prev *rasterNode
	next *rasterNode
}

func newRasterCache(capacity int) *rasterCache {
	if capacity <= 0 {
		capacity = 16
	}
	c := &rasterCache{
		capacity: capacity,
		items:    make(map[RasterKey]*rasterNode),
	}
	c.head = &rasterNode{}
	c.tail = &rasterNode{}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// get returns the cached render, marking it most recently used.
func (c *rasterCache) get(key RasterKey) (*pdfdoc.RenderedPage, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(node)
	return node.page, true
}

// putIfAbsent stores page unless a concurrent render won the race, in
// which case the already cached page is returned. Callers always use the
// returned value so every goroutine sees the same render.
func (c *rasterCache) putIfAbsent(key RasterKey, page *pdfdoc.RenderedPage) *pdfdoc.RenderedPage {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[key]; ok {
		c.moveToFront(node)
		return node.page
	}

	node := &rasterNode{key: key, page: page}
	c.addToFront(node)
	c.items[key] = node
	if len(c.items) > c.capacity {
		c.evict()
	}
	return page
}

func (c *rasterCache) len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

func (c *rasterCache) moveToFront(node *rasterNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *rasterCache) addToFront(node *rasterNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *rasterCache) removeNode(node *rasterNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *rasterCache) evict() {
	lru := c.tail.prev
	if lru != c.head {
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}
