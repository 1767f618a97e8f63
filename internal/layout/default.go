package layout

// Default returns the built-in SmartBuy+ store.
func Default() *Layout {
	return &Layout{
		Sections: []Section{
			{
				ID: "dairy", Name: "Dairy & Eggs", Color: "bg-blue-50", BorderColor: "border-blue-200",
				Racks: []Rack{
					{ID: "d1", Name: "Milk & Cream", X: 30, Y: 60, Width: 140, Height: 80, Items: []string{"Milk", "Cream"}, InList: true},
					{ID: "d2", Name: "Cheese", X: 30, Y: 160, Width: 140, Height: 80, Items: []string{"Cheddar", "Mozzarella"}},
					{ID: "d3", Name: "Eggs & Butter", X: 30, Y: 260, Width: 140, Height: 80, Items: []string{"Eggs", "Butter"}, InList: true},
				},
			},
			{
				ID: "produce", Name: "Produce", Color: "bg-green-50", BorderColor: "border-green-200",
				Racks: []Rack{
					{ID: "p1", Name: "Fruits", X: 210, Y: 60, Width: 160, Height: 80, Items: []string{"Apples", "Bananas", "Oranges"}, InList: true},
					{ID: "p2", Name: "Vegetables", X: 210, Y: 160, Width: 160, Height: 80, Items: []string{"Carrots", "Lettuce", "Tomatoes"}},
				},
			},
			{
				ID: "bakery", Name: "Bakery", Color: "bg-amber-50", BorderColor: "border-amber-200",
				Racks: []Rack{
					{ID: "b1", Name: "Bread", X: 410, Y: 60, Width: 140, Height: 80, Items: []string{"Whole Wheat Bread"}, InList: true},
					{ID: "b2", Name: "Pastries", X: 410, Y: 160, Width: 140, Height: 80, Items: []string{"Croissants", "Donuts"}},
				},
			},
			{
				ID: "meat", Name: "Meat & Seafood", Color: "bg-red-50", BorderColor: "border-red-200",
				Racks: []Rack{
					{ID: "m1", Name: "Beef", X: 30, Y: 380, Width: 140, Height: 80, Items: []string{"Ground Beef"}},
					{ID: "m2", Name: "Poultry", X: 30, Y: 480, Width: 140, Height: 80, Items: []string{"Chicken Breast"}, InList: true},
				},
			},
			{
				ID: "frozen", Name: "Frozen Foods", Color: "bg-cyan-50", BorderColor: "border-cyan-200",
				Racks: []Rack{
					{ID: "f1", Name: "Frozen Meals", X: 210, Y: 380, Width: 160, Height: 80, Items: []string{"Frozen Pizza"}},
					{ID: "f2", Name: "Ice Cream", X: 210, Y: 480, Width: 160, Height: 80, Items: []string{"Vanilla Ice Cream"}},
				},
			},
			{
				ID: "snacks", Name: "Snacks & Beverages", Color: "bg-purple-50", BorderColor: "border-purple-200",
				Racks: []Rack{
					{ID: "s1", Name: "Chips & Snacks", X: 410, Y: 380, Width: 140, Height: 80, Items: []string{"Potato Chips"}},
					{ID: "s2", Name: "Soda & Drinks", X: 410, Y: 480, Width: 140, Height: 80, Items: []string{"Cola", "Sparkling Water"}, InList: true},
				},
			},
			{
				ID: "checkout", Name: "Checkout", Color: "bg-gray-100", BorderColor: "border-gray-300",
				Racks: []Rack{
					{ID: "c1", Name: "Checkout", X: 240, Y: 620, Width: 120, Height: 60},
				},
			},
		},
		SeedList: []SeedItem{
			{ID: "milk", Name: "Milk", Section: "dairy", Rack: "d1"},
			{ID: "eggs", Name: "Eggs", Section: "dairy", Rack: "d3"},
			{ID: "bread", Name: "Whole Wheat Bread", Section: "bakery", Rack: "b1"},
			{ID: "apples", Name: "Apples", Section: "produce", Rack: "p1"},
			{ID: "chicken", Name: "Chicken Breast", Section: "meat", Rack: "m2"},
			{ID: "sparkling", Name: "Sparkling Water", Section: "snacks", Rack: "s2"},
		},
		Recommendations: []Recommendation{
			{ID: "rec1", Name: "Organic Honey", Section: "produce", Price: "$5.99"},
			{ID: "rec2", Name: "Artisan Cheese", Section: "dairy", Price: "$7.49"},
			{ID: "rec3", Name: "Sparkling Water", Section: "snacks", Price: "$3.99"},
			{ID: "rec4", Name: "Frozen Berries", Section: "frozen", Price: "$4.99"},
		},
		Route: []Waypoint{
			{X: 300, Y: 700, Section: "entrance"},
			{X: 410, Y: 480, Item: "sparkling", Section: "snacks", Rack: "s2", Stop: true, Recommendation: "rec3"},
			{X: 410, Y: 160, Item: "bread", Section: "bakery", Rack: "b1", Stop: true},
			{X: 280, Y: 160, Section: "aisle"},
			{X: 210, Y: 160, Item: "apples", Section: "produce", Rack: "p1", Stop: true},
			{X: 30, Y: 60, Item: "milk", Section: "dairy", Rack: "d1", Stop: true},
			{X: 30, Y: 260, Item: "eggs", Section: "dairy", Rack: "d3", Stop: true},
			{X: 30, Y: 480, Item: "chicken", Section: "meat", Rack: "m2", Stop: true},
			{X: 210, Y: 480, Section: "frozen", Recommendation: "rec4"},
			{X: 280, Y: 480, Section: "aisle"},
			{X: 280, Y: 620, Section: "checkout"},
		},
	}
}
