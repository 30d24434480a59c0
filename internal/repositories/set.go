package repositories

import "gorm.io/gorm"

// Set bundles one implementation of every repository.
type Set struct {
	Products      ProductRepository
	Users         UserRepository
	Carts         CartRepository
	Orders        OrderRepository
	Prescriptions PrescriptionRepository
}

// NewGORMSet wires every repository to db.
func NewGORMSet(db *gorm.DB) Set {
	return Set{
		Products:      NewGORMProductRepository(db),
		Users:         NewGORMUserRepository(db),
		Carts:         NewGORMCartRepository(db),
		Orders:        NewGORMOrderRepository(db),
		Prescriptions: NewGORMPrescriptionRepository(db),
	}
}

// NewMockSet returns in-memory repositories sharing one product store.
func NewMockSet() Set {
	products := NewMockProductRepository()
	return Set{
		Products:      products,
		Users:         NewMockUserRepository(),
		Carts:         NewMockCartRepository(),
		Orders:        NewMockOrderRepository(products),
		Prescriptions: NewMockPrescriptionRepository(),
	}
}
