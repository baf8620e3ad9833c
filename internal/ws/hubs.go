package ws

type Hubs struct {
	Feed    *FeedHub
	Student *StudentHub
}

func NewHubs() *Hubs {
	return &Hubs{
		Feed:    NewFeedHub(),
		Student: NewStudentHub(),
	}
}
