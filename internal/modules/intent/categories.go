package intent

// DefaultCategories is the production category table. Order matters twice:
// the dispatcher tries service rules in this order (food first, then
// cleaning, plumbing, electrical, laundry and the rest), and the matcher
// breaks score ties in favour of the earlier row.
var DefaultCategories = []ServiceCategory{
	{
		Category:      "catering",
		Title:         "Food & Catering",
		Keywords:      []string{"food", "caterer", "catering", "chef", "cook", "meal", "small chops", "buffet"},
		Subcategories: []string{"Party catering", "Home meals", "Small chops", "Private chef"},
		Triggers:      []string{"food", "cater", "chef", "cook", "meal", "small chops", "buffet", "hungry"},
	},
	{
		Category:      "cleaning",
		Title:         "Cleaning",
		Keywords:      []string{"clean", "cleaning", "cleaner", "maid", "housekeeping", "fumigation"},
		Subcategories: []string{"Home cleaning", "Office cleaning", "Deep cleaning", "Post-construction cleaning", "Fumigation"},
		Triggers:      []string{"clean", "maid", "housekeep", "fumigat", "sweep"},
		Excludes:      []string{"dry clean"},
	},
	{
		Category:      "plumbing",
		Title:         "Plumbing",
		Keywords:      []string{"plumber", "plumbing", "pipe", "leak", "drain", "toilet", "sink", "borehole", "water heater"},
		Subcategories: []string{"Leak repairs", "Pipe installation", "Toilet & sink fixes", "Borehole & pumps"},
		Triggers:      []string{"plumb", "pipe", "leak", "drain", "toilet", "sink", "borehole", "water heater"},
	},
	{
		Category:      "electrical",
		Title:         "Electrical",
		Keywords:      []string{"electrician", "electrical", "electric", "wiring", "socket", "generator", "inverter", "solar"},
		Subcategories: []string{"House wiring", "Generator repair", "Inverter & solar", "Fittings & sockets"},
		Triggers:      []string{"electric", "wiring", "rewire", "socket", "generator", "inverter", "solar", "nepa"},
	},
	{
		Category:      "laundry",
		Title:         "Laundry",
		Keywords:      []string{"laundry", "laundromat", "washing", "ironing", "dry cleaning"},
		Subcategories: []string{"Wash & fold", "Ironing", "Dry cleaning", "Pickup & delivery"},
		Triggers:      []string{"laundr", "ironing", "dry clean", "wash my cloth", "wash clothes"},
	},
	{
		Category:      "tutoring",
		Title:         "Tutoring",
		Keywords:      []string{"tutor", "tutoring", "lesson", "homework", "teacher", "waec", "jamb"},
		Subcategories: []string{"Primary school", "Secondary school", "WAEC/JAMB prep", "Music & languages"},
		Triggers:      []string{"tutor", "lesson", "homework", "teacher", "waec", "jamb", "exam prep"},
	},
	{
		Category:      "beauty",
		Title:         "Beauty & Grooming",
		Keywords:      []string{"makeup", "barber", "braids", "salon", "manicure", "pedicure", "haircut", "hairstylist"},
		Subcategories: []string{"Hair styling", "Makeup", "Nails", "Barbing"},
		Triggers:      []string{"makeup", "make up", "barb", "braid", "salon", "manicure", "pedicure", "haircut", "hairstyl", "hairdo", "lashes"},
	},
	{
		Category:      "repairs",
		Title:         "Repairs & Handyman",
		Keywords:      []string{"repair", "handyman", "carpenter", "carpentry", "furniture", "painter", "painting"},
		Subcategories: []string{"Carpentry", "Painting", "Furniture assembly", "Appliance repair"},
		Triggers:      []string{"repair", "handyman", "carpent", "furniture", "paint", "fix"},
	},
	{
		Category:      "moving",
		Title:         "Moving & Logistics",
		Keywords:      []string{"moving", "movers", "relocation", "packers", "haulage"},
		Subcategories: []string{"Home relocation", "Office moves", "Packing", "Haulage"},
		Triggers:      []string{"moving", "movers", "relocat", "packers", "haulage", "move house", "move my"},
	},
}

// Lookup returns the category row with the given identity.
func Lookup(categories []ServiceCategory, name string) (ServiceCategory, bool) {
	for _, c := range categories {
		if c.Category == name {
			return c, true
		}
	}
	return ServiceCategory{}, false
}
