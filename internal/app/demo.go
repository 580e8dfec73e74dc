package app

import "github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"

// DemoQuery is the query the demo command runs against DemoProducts.
const DemoQuery = "smartphone 4k"

func DemoProducts() []catalog.Product {
	return []catalog.Product{
		catalog.New(1, "Smartphone SuperX 64GB", "ZenTech", "Eletrônicos", "Smartphone com câmera dupla"),
		catalog.New(2, "Camiseta Polo Masculina", "ClothBrand", "Vestuário", "100% algodão"),
		catalog.New(3, `Smart TV 55"`, "ViewTech", "Eletrônicos", "4K UHD Smart TV"),
	}
}
