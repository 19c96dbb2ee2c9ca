package orders

const TopicOrderEvents = "kitchen.orders.events"

// Partition key = tracker id, so all events for one order keep their order.
func PartitionKey(trackerID string) []byte { return []byte(trackerID) }
