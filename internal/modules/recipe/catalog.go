package recipe

var defaultRecipes = []Recipe{
	{
		Name:        "Jollof Rice",
		Ingredients: []string{"rice", "tomatoes", "tatashe", "scotch bonnet", "onions", "tomato paste", "vegetable oil", "stock", "thyme", "curry powder", "bay leaves"},
		Steps: []string{
			"Blend tomatoes, tatashe, scotch bonnet and half the onions.",
			"Fry the remaining onions in oil, add tomato paste and fry for 5 minutes.",
			"Add the blended pepper and cook until the oil floats on top.",
			"Season with stock, thyme, curry and bay leaves.",
			"Add washed rice and just enough water, cover and steam on low heat until soft.",
		},
		PrepTime: "1 hour",
	},
	{
		Name:        "Egusi Soup",
		Ingredients: []string{"ground egusi", "palm oil", "assorted meat", "stockfish", "crayfish", "ugu leaves", "scotch bonnet", "onions", "seasoning cubes"},
		Steps: []string{
			"Boil the assorted meat and stockfish with onions and seasoning.",
			"Mix ground egusi with a little water into a paste.",
			"Heat palm oil, add the egusi paste and fry, stirring, for 10 minutes.",
			"Add the meat stock, meat, crayfish and pepper and simmer for 15 minutes.",
			"Stir in chopped ugu leaves and cook for 3 more minutes.",
		},
		PrepTime: "1 hour 15 minutes",
	},
	{
		Name:        "Fried Rice",
		Ingredients: []string{"rice", "carrots", "green beans", "green peas", "sweet corn", "liver", "prawns", "curry powder", "thyme", "spring onions", "vegetable oil"},
		Steps: []string{
			"Parboil the rice in chicken stock with curry and thyme.",
			"Dice the vegetables and liver.",
			"Stir-fry the liver and prawns, then the vegetables.",
			"Add the rice in batches and fry until well mixed.",
		},
		PrepTime: "50 minutes",
	},
	{
		Name:        "Moi Moi",
		Ingredients: []string{"peeled beans", "tatashe", "onions", "scotch bonnet", "vegetable oil", "crayfish", "boiled eggs", "seasoning cubes"},
		Steps: []string{
			"Soak and peel the beans.",
			"Blend beans with tatashe, onions and pepper until smooth.",
			"Stir in oil, crayfish, seasoning and warm water.",
			"Pour into leaves or ramekins, add egg slices and steam for 45 minutes.",
		},
		PrepTime: "1 hour 30 minutes",
	},
	{
		Name:        "Puff Puff",
		Ingredients: []string{"flour", "sugar", "yeast", "nutmeg", "salt", "warm water", "vegetable oil"},
		Steps: []string{
			"Mix flour, sugar, yeast, nutmeg and salt.",
			"Add warm water and mix into a sticky batter.",
			"Cover and let it rise for 45 minutes.",
			"Scoop balls of batter into hot oil and fry until golden.",
		},
		PrepTime: "1 hour",
	},
	{
		Name:        "Pepper Soup",
		Ingredients: []string{"goat meat", "pepper soup spice", "scotch bonnet", "onions", "uziza leaves", "seasoning cubes", "salt"},
		Steps: []string{
			"Wash the goat meat and season with onions, salt and seasoning.",
			"Cook for 20 minutes in its own juices.",
			"Add water, pepper soup spice and pepper, then simmer until tender.",
			"Finish with sliced uziza leaves.",
		},
		PrepTime: "1 hour",
	},
	{
		Name:        "Efo Riro",
		Ingredients: []string{"spinach", "palm oil", "tatashe", "scotch bonnet", "locust beans", "assorted meat", "smoked fish", "crayfish", "onions"},
		Steps: []string{
			"Blanch and squeeze the spinach.",
			"Fry onions and locust beans in palm oil.",
			"Add blended peppers and fry for 15 minutes.",
			"Add meat, fish and crayfish, then fold in the spinach.",
		},
		PrepTime: "45 minutes",
	},
	{
		Name:        "Suya",
		Ingredients: []string{"beef", "yaji spice", "groundnut oil", "onions", "tomatoes", "salt"},
		Steps: []string{
			"Slice the beef thinly and thread onto skewers.",
			"Rub with oil and coat generously with yaji.",
			"Grill over charcoal, turning often, until cooked through.",
			"Serve with sliced onions and tomatoes.",
		},
		PrepTime: "40 minutes",
	},
}
