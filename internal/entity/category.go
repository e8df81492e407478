package entity

type Category string

const (
	CategoryDesign   Category = "Design"
	CategoryBusiness Category = "Business"
	CategoryFitness  Category = "Fitness"
	CategoryMusic    Category = "Music"
	CategoryTech     Category = "Tech"
	CategoryArt      Category = "Art"
	CategoryOther    Category = "Other"
)

func Categories() []Category {
	return []Category{
		CategoryDesign,
		CategoryBusiness,
		CategoryFitness,
		CategoryMusic,
		CategoryTech,
		CategoryArt,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
