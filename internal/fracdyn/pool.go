package fracdyn

import "sync"

// FieldPool recycles scratch field buffers for the iterated-Laplacian
// branch of the operator. Buffers handed back are zeroed.
type FieldPool struct {
	pool sync.Pool
	size int
}

func NewFieldPool(size int) *FieldPool {
	return &FieldPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make(Field, size)
			},
		},
	}
}

func (p *FieldPool) Get() Field {
	return p.pool.Get().(Field)
}

func (p *FieldPool) Put(f Field) {
	if len(f) == p.size {
		for i := range f {
			f[i] = 0
		}
		p.pool.Put(f)
	}
}
