package domain

// CatalogItem is a free-form JSON document stored under a key.
type CatalogItem struct {
	Key      string
	Document []byte
}

// ModelName enumerates the models served by GET /model/{model_name}.
type ModelName string

const (
	ModelAlexNet ModelName = "alexnet"
	ModelResNet  ModelName = "resnet"
	ModelLeNet   ModelName = "lenet"
)

// ParseModelName validates a model name.
func ParseModelName(s string) (ModelName, bool) {
	switch m := ModelName(s); m {
	case ModelAlexNet, ModelResNet, ModelLeNet:
		return m, true
	}
	return "", false
}

// Message returns the tutorial blurb for the model.
func (m ModelName) Message() string {
	switch m {
	case ModelAlexNet:
		return "Deep Learning FTW!"
	case ModelLeNet:
		return "LeCNN all the images"
	default:
		return "Have some residuals"
	}
}
